package emit

import "astc/ast"

// foldConstants recursively folds integer-constant arithmetic subtrees into
// a single IntLit (spec.md §4.4 "Constant folding"). Only +, -, * and / are
// folded; a division whose right operand is the literal integer zero is
// skipped, so the runtime division-by-zero fault still fires.
func foldConstants(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Binary:
		n.Left = foldConstants(n.Left)
		n.Right = foldConstants(n.Right)

		left, lok := n.Left.(*ast.IntLit)
		right, rok := n.Right.(*ast.IntLit)
		if !lok || !rok {
			return n
		}

		switch n.Op {
		case ast.OpAdd:
			return &ast.IntLit{Value: left.Value + right.Value, Position: n.Position}
		case ast.OpSub:
			return &ast.IntLit{Value: left.Value - right.Value, Position: n.Position}
		case ast.OpMul:
			return &ast.IntLit{Value: left.Value * right.Value, Position: n.Position}
		case ast.OpDiv:
			if right.Value == 0 {
				return n
			}
			return &ast.IntLit{Value: left.Value / right.Value, Position: n.Position}
		default:
			return n
		}

	case *ast.Unary:
		n.Operand = foldConstants(n.Operand)
		return n

	case *ast.Call:
		for i, arg := range n.Args {
			n.Args[i] = foldConstants(arg)
		}
		return n

	case *ast.Index:
		n.Array = foldConstants(n.Array)
		n.Subscript = foldConstants(n.Subscript)
		return n

	default:
		return n
	}
}

// foldStmt applies foldConstants to every expression reachable from stmt,
// without altering control-flow shape.
func foldStmt(stmt ast.Stmt) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.CompoundStmt:
		for i, inner := range s.Statements {
			s.Statements[i] = foldStmt(inner)
		}
	case *ast.IfStmt:
		s.Condition = foldConstants(s.Condition)
		s.Then = foldStmt(s.Then)
		if s.Else != nil {
			s.Else = foldStmt(s.Else)
		}
	case *ast.WhileStmt:
		s.Condition = foldConstants(s.Condition)
		s.Body = foldStmt(s.Body)
	case *ast.ForStmt:
		if s.Init != nil {
			s.Init = foldStmt(s.Init)
		}
		if s.Condition != nil {
			s.Condition = foldConstants(s.Condition)
		}
		if s.Post != nil {
			s.Post = foldConstants(s.Post)
		}
		s.Body = foldStmt(s.Body)
	case *ast.ReturnStmt:
		if s.Value != nil {
			s.Value = foldConstants(s.Value)
		}
	case *ast.ExprStmt:
		s.Expression = foldConstants(s.Expression)
	case *ast.DeclStmt:
		if vd, ok := s.Decl.(*ast.VarDecl); ok && vd.Initializer != nil {
			vd.Initializer = foldConstants(vd.Initializer)
		}
	}
	return stmt
}

// eliminateDeadCode drops standalone constant expression-statements — a
// bare constant expression with no side effect, such as `42;` left over
// from folding (spec.md §4.4 "Dead-code elimination of standalone
// constant expression-statements"). The section's safety check ("if a
// subtree contains a call, no folding or elimination is performed") holds
// automatically here: a call is never folded to a literal, so an
// expression-statement wrapping a call never matches isStandaloneConstant.
func eliminateDeadCode(stmts []ast.Stmt) []ast.Stmt {
	out := stmts[:0]
	for _, s := range stmts {
		if isStandaloneConstant(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isStandaloneConstant(s ast.Stmt) bool {
	exprStmt, ok := s.(*ast.ExprStmt)
	if !ok {
		return false
	}
	switch exprStmt.Expression.(type) {
	case *ast.IntLit, *ast.FloatLit:
		return true
	default:
		return false
	}
}
