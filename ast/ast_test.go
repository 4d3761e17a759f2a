package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"astc/ast"
	"astc/token"
)

// countingVisitor counts how many expression/statement nodes it visits,
// exercising the full Visitor dispatch surface rather than one case at a
// time (grounded on the teacher's own Accept-dispatch tests).
type countingVisitor struct {
	exprs int
	stmts int
}

func (v *countingVisitor) VisitIntLit(*ast.IntLit) any          { v.exprs++; return nil }
func (v *countingVisitor) VisitFloatLit(*ast.FloatLit) any      { v.exprs++; return nil }
func (v *countingVisitor) VisitStringLit(*ast.StringLit) any    { v.exprs++; return nil }
func (v *countingVisitor) VisitIdent(*ast.Ident) any            { v.exprs++; return nil }
func (v *countingVisitor) VisitUnary(e *ast.Unary) any          { v.exprs++; return e.Operand.AcceptExpr(v) }
func (v *countingVisitor) VisitBinary(e *ast.Binary) any {
	v.exprs++
	e.Left.AcceptExpr(v)
	e.Right.AcceptExpr(v)
	return nil
}
func (v *countingVisitor) VisitCall(e *ast.Call) any {
	v.exprs++
	for _, a := range e.Args {
		a.AcceptExpr(v)
	}
	return nil
}
func (v *countingVisitor) VisitIndex(*ast.Index) any                     { v.exprs++; return nil }
func (v *countingVisitor) VisitMember(*ast.MemberAccess) any             { v.exprs++; return nil }
func (v *countingVisitor) VisitArrowMember(*ast.ArrowMember) any         { v.exprs++; return nil }
func (v *countingVisitor) VisitCompoundLiteral(*ast.CompoundLiteral) any { v.exprs++; return nil }

func (v *countingVisitor) VisitCompoundStmt(s *ast.CompoundStmt) any {
	v.stmts++
	for _, st := range s.Statements {
		st.AcceptStmt(v)
	}
	return nil
}
func (v *countingVisitor) VisitIfStmt(*ast.IfStmt) any         { v.stmts++; return nil }
func (v *countingVisitor) VisitWhileStmt(*ast.WhileStmt) any   { v.stmts++; return nil }
func (v *countingVisitor) VisitForStmt(*ast.ForStmt) any       { v.stmts++; return nil }
func (v *countingVisitor) VisitReturnStmt(s *ast.ReturnStmt) any {
	v.stmts++
	if s.Value != nil {
		s.Value.AcceptExpr(v)
	}
	return nil
}
func (v *countingVisitor) VisitBreakStmt(*ast.BreakStmt) any       { v.stmts++; return nil }
func (v *countingVisitor) VisitContinueStmt(*ast.ContinueStmt) any { v.stmts++; return nil }
func (v *countingVisitor) VisitExprStmt(s *ast.ExprStmt) any {
	v.stmts++
	s.Expression.AcceptExpr(v)
	return nil
}
func (v *countingVisitor) VisitDeclStmt(*ast.DeclStmt) any { v.stmts++; return nil }

func TestVisitorDispatchesThroughNestedExpressions(t *testing.T) {
	pos := token.Position{File: "t.c", Line: 1, Column: 1}
	expr := &ast.Binary{
		Op:    ast.OpAdd,
		Left:  &ast.IntLit{Value: 1, Position: pos},
		Right: &ast.Unary{Op: ast.UnaryMinus, Operand: &ast.IntLit{Value: 2, Position: pos}, Position: pos},
	}
	body := &ast.CompoundStmt{
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: expr, Position: pos},
			&ast.ReturnStmt{Value: &ast.IntLit{Value: 0, Position: pos}, Position: pos},
		},
		Position: pos,
	}

	v := &countingVisitor{}
	body.AcceptStmt(v)

	require.Equal(t, 3, v.stmts) // CompoundStmt, ExprStmt, ReturnStmt
	require.Equal(t, 5, v.exprs) // Binary, IntLit(1), Unary, IntLit(2), IntLit(0)
}

func TestBinaryOpIsAssignmentRecognizesCompoundForms(t *testing.T) {
	require.True(t, ast.OpAssign.IsAssignment())
	require.True(t, ast.OpAddAssign.IsAssignment())
	require.True(t, ast.OpXorAssign.IsAssignment())
	require.False(t, ast.OpAdd.IsAssignment())
	require.False(t, ast.OpEq.IsAssignment())
}
