package parser

import (
	"astc/ast"
	"astc/token"
)

// Precedence levels match spec.md §4.2's operator table exactly; higher
// binds tighter. Assignment is the sole right-associative family.
const (
	precNone = iota
	precAssign
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

var binaryPrec = map[token.Kind]int{
	token.ASSIGN: precAssign, token.PLUS_ASSIGN: precAssign, token.MINUS_ASSIGN: precAssign,
	token.STAR_ASSIGN: precAssign, token.SLASH_ASSIGN: precAssign, token.PERCENT_ASSIGN: precAssign,
	token.SHL_ASSIGN: precAssign, token.SHR_ASSIGN: precAssign,
	token.AMP_ASSIGN: precAssign, token.PIPE_ASSIGN: precAssign, token.CARET_ASSIGN: precAssign,

	token.OR_OR:  precLogicalOr,
	token.AND_AND: precLogicalAnd,
	token.PIPE:        precBitOr,
	token.CARET:       precBitXor,
	token.AMP:         precBitAnd,

	token.EQ: precEquality, token.NE: precEquality,

	token.LT: precRelational, token.LE: precRelational, token.GT: precRelational, token.GE: precRelational,

	token.SHL: precShift, token.SHR: precShift,

	token.PLUS: precAdditive, token.MINUS: precAdditive,

	token.STAR: precMultiplicative, token.SLASH: precMultiplicative, token.PERCENT: precMultiplicative,
}

var binaryOps = map[token.Kind]ast.BinaryOp{
	token.ASSIGN: ast.OpAssign, token.PLUS_ASSIGN: ast.OpAddAssign, token.MINUS_ASSIGN: ast.OpSubAssign,
	token.STAR_ASSIGN: ast.OpMulAssign, token.SLASH_ASSIGN: ast.OpDivAssign, token.PERCENT_ASSIGN: ast.OpModAssign,
	token.SHL_ASSIGN: ast.OpShlAssign, token.SHR_ASSIGN: ast.OpShrAssign,
	token.AMP_ASSIGN: ast.OpAndAssign, token.PIPE_ASSIGN: ast.OpOrAssign, token.CARET_ASSIGN: ast.OpXorAssign,

	token.OR_OR: ast.OpLogicalOr, token.AND_AND: ast.OpLogicalAnd,
	token.PIPE: ast.OpBitOr, token.CARET: ast.OpBitXor, token.AMP: ast.OpBitAnd,

	token.EQ: ast.OpEq, token.NE: ast.OpNe,
	token.LT: ast.OpLt, token.LE: ast.OpLe, token.GT: ast.OpGt, token.GE: ast.OpGe,
	token.SHL: ast.OpShl, token.SHR: ast.OpShr,
	token.PLUS: ast.OpAdd, token.MINUS: ast.OpSub,
	token.STAR: ast.OpMul, token.SLASH: ast.OpDiv, token.PERCENT: ast.OpMod,
}

// expression parses a full expression at the lowest precedence
// (assignment), per spec.md §4.2.
func (p *Parser) expression() (ast.Expr, error) {
	return p.parseExpr(precAssign)
}

// parseExpr implements precedence-climbing: it parses a unary-or-higher
// term, then folds in binary operators whose precedence is >= minPrec.
// Assignment is right-associative (recurses at the same precedence on
// its RHS); every other operator is left-associative (recurses at
// precedence+1).
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		kind := p.peek().Kind
		prec, ok := binaryPrec[kind]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.advance()
		op := binaryOps[kind]

		nextMinPrec := prec + 1
		if op.IsAssignment() {
			nextMinPrec = prec
		}
		right, err := p.parseExpr(nextMinPrec)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Position: opTok.Position}
	}

	return left, nil
}

// unary parses a prefix unary operator or falls through to postfix.
func (p *Parser) unary() (ast.Expr, error) {
	tok := p.peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.PLUS:
		op = ast.UnaryPlus
	case token.MINUS:
		op = ast.UnaryMinus
	case token.BANG:
		op = ast.UnaryNot
	case token.TILDE:
		op = ast.UnaryBitNot
	case token.STAR:
		op = ast.UnaryDeref
	case token.AMP:
		op = ast.UnaryAddr
	case token.INC:
		op = ast.UnaryPreInc
	case token.DEC:
		op = ast.UnaryPreDec
	default:
		return p.postfix()
	}
	p.advance()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Op: op, Operand: operand, Position: tok.Position}, nil
}

// postfix parses a primary expression followed by any chain of postfix
// operators: call, index, member access, and post-increment/decrement.
func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(token.LPAREN):
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN, "expected ')' after call arguments"); err != nil {
				return nil, err
			}
			call := &ast.Call{Callee: expr, Args: args, Position: expr.Pos()}
			tagLibcCall(call)
			expr = call

		case p.match(token.LBRACKET):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "expected ']' after subscript"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Array: expr, Subscript: idx, Position: expr.Pos()}

		case p.match(token.DOT):
			nameTok, err := p.expect(token.IDENT, "expected member name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberAccess{Object: expr, Name: nameTok.Lexeme, Position: expr.Pos()}

		case p.match(token.ARROW):
			nameTok, err := p.expect(token.IDENT, "expected member name after '->'")
			if err != nil {
				return nil, err
			}
			expr = &ast.ArrowMember{Pointer: expr, Name: nameTok.Lexeme, Position: expr.Pos()}

		case p.match(token.INC):
			expr = &ast.Unary{Op: ast.UnaryPostInc, Operand: expr, Position: expr.Pos()}

		case p.match(token.DEC):
			expr = &ast.Unary{Op: ast.UnaryPostDec, Operand: expr, Position: expr.Pos()}

		default:
			return expr, nil
		}
	}
}

func (p *Parser) argList() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.check(token.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: toInt64(tok.Value), Position: tok.Position}, nil
	case token.FLOAT_LIT:
		p.advance()
		return &ast.FloatLit{Value: toFloat64(tok.Value), Position: tok.Position}, nil
	case token.STRING_LIT:
		p.advance()
		return &ast.StringLit{Value: tok.Lexeme, Position: tok.Position}, nil
	case token.CHAR_LIT:
		p.advance()
		return &ast.IntLit{Value: toInt64(tok.Value), Position: tok.Position}, nil
	case token.IDENT:
		p.advance()
		return &ast.Ident{Name: tok.Lexeme, Position: tok.Position}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "expected ')' to close grouped expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBRACE:
		return p.compoundLiteral()
	default:
		return nil, &SyntaxError{Position: tok.Position, Message: "expected an expression", Lexeme: tok.Lexeme}
	}
}

func toInt64(v any) int64 {
	if n, ok := v.(int64); ok {
		return n
	}
	return 0
}

func toFloat64(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

func (p *Parser) compoundLiteral() (ast.Expr, error) {
	openTok, err := p.expect(token.LBRACE, "expected '{'")
	if err != nil {
		return nil, err
	}
	lit := &ast.CompoundLiteral{Position: openTok.Position}
	if p.check(token.RBRACE) {
		p.advance()
		return lit, nil
	}
	for {
		elem, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, elem)
		if !p.match(token.COMMA) {
			break
		}
		if p.check(token.RBRACE) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close initializer list"); err != nil {
		return nil, err
	}
	return lit, nil
}
