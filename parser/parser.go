// Package parser implements a single-pass, recursive-descent parser with
// Pratt-style operator-precedence expression parsing, following the
// structure of the teacher repo's Parser (position-indexed token slice,
// peek/advance/match/consume helpers, a declaration/statement/expression
// hierarchy of methods). It consumes a token stream and produces an
// *ast.TranslationUnit, recovering from syntax errors by skipping forward
// to the next construct that can begin a declaration (spec.md §4.2).
package parser

import (
	"astc/ast"
	"astc/libc"
	"astc/token"
)

// declStartKinds are token kinds that can begin a top-level declaration;
// synchronize() skips forward to the next one of these (or a ';') after a
// syntax error.
var declStartKinds = map[token.Kind]bool{
	token.VOID: true, token.CHAR: true, token.SHORT: true, token.INT: true,
	token.LONG: true, token.FLOAT: true, token.DOUBLE: true,
	token.SIGNED: true, token.UNSIGNED: true,
	token.STRUCT: true, token.UNION: true, token.ENUM: true,
	token.TYPEDEF: true, token.STATIC: true, token.EXTERN: true,
	token.CONST: true, token.MODULE: true, token.IMPORT: true, token.EXPORT: true,
}

var primitiveKinds = map[token.Kind]ast.Primitive{
	token.VOID: ast.PrimVoid, token.CHAR: ast.PrimChar, token.SHORT: ast.PrimShort,
	token.INT: ast.PrimInt, token.LONG: ast.PrimLong, token.FLOAT: ast.PrimFloat,
	token.DOUBLE: ast.PrimDouble, token.SIGNED: ast.PrimSigned, token.UNSIGNED: ast.PrimUnsigned,
}

// NOTE: the parser makes best-effort recovery; it does not promise a
// correct AST from broken input (spec.md §1 Non-goals).
type Parser struct {
	tokens []token.Token
	pos    int
	errors []error
}

// Make constructs a Parser over a finished token stream, as produced by
// lexer.Scan.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token      { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}
func (p *Parser) previous() token.Token  { return p.tokens[p.pos-1] }
func (p *Parser) isAtEnd() bool          { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return kind == token.EOF
	}
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	tok := p.peek()
	return token.Token{}, &SyntaxError{Position: tok.Position, Message: msg, Lexeme: tok.Lexeme}
}

func (p *Parser) isTypeStart() bool {
	_, ok := primitiveKinds[p.peek().Kind]
	return ok
}

// Parse consumes the whole token stream and returns the resulting
// translation unit plus any syntax errors encountered. Parsing always
// continues past a recoverable error; see synchronize.
func (p *Parser) Parse() (*ast.TranslationUnit, []error) {
	unit := &ast.TranslationUnit{}
	if len(p.tokens) > 0 {
		unit.Position = p.tokens[0].Position
	}

	for !p.isAtEnd() {
		decl, err := p.declaration()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}
		if decl != nil {
			unit.Decls = append(unit.Decls, decl)
		}
	}

	return unit, p.errors
}

// synchronize skips tokens until one that can begin a top-level
// declaration, or a ';', whichever comes first, then resumes parsing
// from there (spec.md §4.2 "Error recovery").
func (p *Parser) synchronize() {
	// Consume at least one token when the current one cannot start a
	// declaration, so an error raised right after a ';' cannot repeat.
	if !declStartKinds[p.peek().Kind] {
		p.advance()
	}
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		if declStartKinds[p.peek().Kind] {
			return
		}
		p.advance()
	}
}

func (p *Parser) declaration() (ast.Decl, error) {
	switch {
	case p.match(token.MODULE):
		return p.moduleDecl()
	case p.match(token.IMPORT):
		return p.importDecl()
	case p.match(token.EXPORT):
		return p.exportDecl()
	case p.check(token.STRUCT), p.check(token.UNION), p.check(token.ENUM):
		return p.aggregateDecl()
	case p.isTypeStart():
		return p.typedDeclaration()
	default:
		// storage-class/qualifier keywords (static, extern, const,
		// typedef, volatile, auto, register) are accepted and then
		// ignored at the front of a declaration, matching a type-start.
		if isStorageClass(p.peek().Kind) {
			p.advance()
			return p.declaration()
		}
		tok := p.peek()
		return nil, &SyntaxError{Position: tok.Position, Message: "expected a declaration", Lexeme: tok.Lexeme}
	}
}

func isStorageClass(k token.Kind) bool {
	switch k {
	case token.STATIC, token.EXTERN, token.CONST, token.TYPEDEF, token.VOLATILE, token.AUTO, token.REGISTER:
		return true
	}
	return false
}

func (p *Parser) moduleDecl() (ast.Decl, error) {
	pos := p.previous().Position
	name, err := p.expect(token.IDENT, "expected module name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after module declaration"); err != nil {
		return nil, err
	}
	return &ast.ModuleDecl{Name: name.Lexeme, Position: pos}, nil
}

func (p *Parser) importDecl() (ast.Decl, error) {
	pos := p.previous().Position
	name, err := p.expect(token.IDENT, "expected import name")
	if err != nil {
		return nil, err
	}
	path := ""
	if p.match(token.FROM) {
		pathTok, err := p.expect(token.STRING_LIT, "expected path string after 'from'")
		if err != nil {
			return nil, err
		}
		path = pathTok.Lexeme
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after import declaration"); err != nil {
		return nil, err
	}
	return &ast.ImportDecl{Name: name.Lexeme, Path: path, Position: pos}, nil
}

func (p *Parser) exportDecl() (ast.Decl, error) {
	pos := p.previous().Position
	name, err := p.expect(token.IDENT, "expected export name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after export declaration"); err != nil {
		return nil, err
	}
	return &ast.ExportDecl{Name: name.Lexeme, Position: pos}, nil
}

func (p *Parser) aggregateDecl() (ast.Decl, error) {
	pos := p.peek().Position
	var kind ast.AggregateKind
	switch {
	case p.match(token.STRUCT):
		kind = ast.AggregateStruct
	case p.match(token.UNION):
		kind = ast.AggregateUnion
	case p.match(token.ENUM):
		kind = ast.AggregateEnum
	}

	tag := ""
	if p.check(token.IDENT) {
		tag = p.advance().Lexeme
	}

	var members []ast.Member
	if p.match(token.LBRACE) {
		for !p.check(token.RBRACE) && !p.isAtEnd() {
			if kind == ast.AggregateEnum {
				nameTok, err := p.expect(token.IDENT, "expected enumerator name")
				if err != nil {
					return nil, err
				}
				m := ast.Member{Name: nameTok.Lexeme, Position: nameTok.Position}
				if p.match(token.ASSIGN) {
					val, err := p.expression()
					if err != nil {
						return nil, err
					}
					m.Value = val
				}
				members = append(members, m)
				if !p.match(token.COMMA) {
					break
				}
			} else {
				typ, err := p.parseType()
				if err != nil {
					return nil, err
				}
				for {
					indirection := 0
					for p.match(token.STAR) {
						indirection++
					}
					fieldType := typ
					if indirection > 0 {
						fieldType = &ast.PointerType{Base: typ, Indirection: indirection, Position: typ.Pos()}
					}
					nameTok, err := p.expect(token.IDENT, "expected member name")
					if err != nil {
						return nil, err
					}
					fieldType, err = p.arraySuffix(fieldType)
					if err != nil {
						return nil, err
					}
					members = append(members, ast.Member{Name: nameTok.Lexeme, Type: fieldType, Position: nameTok.Position})
					if !p.match(token.COMMA) {
						break
					}
				}
				if _, err := p.expect(token.SEMICOLON, "expected ';' after member declaration"); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.RBRACE, "expected '}' to close aggregate declaration"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.SEMICOLON, "expected ';' after aggregate declaration"); err != nil {
		return nil, err
	}

	return &ast.AggregateDecl{Kind: kind, Tag: tag, Members: members, Position: pos}, nil
}

// parseType parses a primitive type specifier. A leading signed/unsigned
// may be followed by a base keyword (e.g. "unsigned int"); the resulting
// node reflects the last non-signedness keyword seen, or the signedness
// keyword itself if it stood alone.
func (p *Parser) parseType() (ast.TypeNode, error) {
	pos := p.peek().Position
	kind, ok := primitiveKinds[p.peek().Kind]
	if !ok {
		return nil, &SyntaxError{Position: pos, Message: "expected a type specifier", Lexeme: p.peek().Lexeme}
	}
	p.advance()
	for {
		next, ok := primitiveKinds[p.peek().Kind]
		if !ok {
			break
		}
		p.advance()
		if next != ast.PrimSigned && next != ast.PrimUnsigned {
			kind = next
		}
	}
	return &ast.PrimitiveType{Primitive: kind, Position: pos}, nil
}

// arraySuffix consumes zero or more `[size]` / `[]` dimensions following a
// declarator name and wraps base accordingly.
func (p *Parser) arraySuffix(base ast.TypeNode) (ast.TypeNode, error) {
	if !p.check(token.LBRACKET) {
		return base, nil
	}
	var dims []ast.Expr
	for p.match(token.LBRACKET) {
		if p.check(token.RBRACKET) {
			dims = append(dims, nil)
		} else {
			size, err := p.expression()
			if err != nil {
				return nil, err
			}
			dims = append(dims, size)
		}
		if _, err := p.expect(token.RBRACKET, "expected ']' after array size"); err != nil {
			return nil, err
		}
	}
	arr := &ast.ArrayType{Element: base, Size: dims[0], Position: base.Pos()}
	if len(dims) > 1 {
		arr.Dimensions = dims[1:]
	}
	return arr, nil
}

// typedDeclaration parses `<type> <pointer-stars>* <identifier> ...`,
// dispatching to a function declaration/definition (when '(' follows the
// identifier) or a variable declaration otherwise (spec.md §4.2).
func (p *Parser) typedDeclaration() (ast.Decl, error) {
	baseType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	indirection := 0
	for p.match(token.STAR) {
		indirection++
	}
	declType := baseType
	if indirection > 0 {
		declType = &ast.PointerType{Base: baseType, Indirection: indirection, Position: baseType.Pos()}
	}

	nameTok, err := p.expect(token.IDENT, "expected declarator name")
	if err != nil {
		return nil, err
	}

	if p.check(token.LPAREN) {
		return p.funcDeclaration(declType, nameTok)
	}

	declType, err = p.arraySuffix(declType)
	if err != nil {
		return nil, err
	}

	var initializer ast.Expr
	if p.match(token.ASSIGN) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Name: nameTok.Lexeme, Type: declType, Initializer: initializer, Position: nameTok.Position}, nil
}

func (p *Parser) funcDeclaration(ret ast.TypeNode, nameTok token.Token) (ast.Decl, error) {
	if _, err := p.expect(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	params, variadic, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return nil, err
	}

	decl := &ast.FuncDecl{Name: nameTok.Lexeme, Return: ret, Params: params, Variadic: variadic, Position: nameTok.Position}

	if p.check(token.LBRACE) {
		body, err := p.compoundStmt()
		if err != nil {
			return nil, err
		}
		decl.Body = body
		return decl, nil
	}

	if _, err := p.expect(token.SEMICOLON, "expected ';' after function prototype"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) paramList() ([]ast.Param, bool, error) {
	var params []ast.Param
	if p.check(token.RPAREN) {
		return params, false, nil
	}
	if p.check(token.VOID) && p.peekAt(1).Kind == token.RPAREN {
		p.advance()
		return params, false, nil
	}
	for {
		if p.match(token.ELLIPSIS) {
			return params, true, nil
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, false, err
		}
		indirection := 0
		for p.match(token.STAR) {
			indirection++
		}
		paramType := typ
		if indirection > 0 {
			paramType = &ast.PointerType{Base: typ, Indirection: indirection, Position: typ.Pos()}
		}
		name := ""
		pos := typ.Pos()
		if p.check(token.IDENT) {
			nameTok := p.advance()
			name = nameTok.Lexeme
			pos = nameTok.Position
			paramType, err = p.arraySuffix(paramType)
			if err != nil {
				return nil, false, err
			}
		}
		params = append(params, ast.Param{Name: name, Type: paramType, Position: pos})
		if !p.match(token.COMMA) {
			break
		}
	}
	return params, false, nil
}

// statement parses a single statement (spec.md §4.2).
func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.check(token.LBRACE):
		return p.compoundStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.BREAK):
		pos := p.previous().Position
		if _, err := p.expect(token.SEMICOLON, "expected ';' after break"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Position: pos}, nil
	case p.match(token.CONTINUE):
		pos := p.previous().Position
		if _, err := p.expect(token.SEMICOLON, "expected ';' after continue"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Position: pos}, nil
	case p.match(token.MODULE):
		d, err := p.moduleDecl()
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Decl: d, Position: d.Pos()}, nil
	case p.match(token.IMPORT):
		d, err := p.importDecl()
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Decl: d, Position: d.Pos()}, nil
	case p.match(token.EXPORT):
		d, err := p.exportDecl()
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Decl: d, Position: d.Pos()}, nil
	case p.isTypeStart():
		d, err := p.typedDeclaration()
		if err != nil {
			return nil, err
		}
		vd, ok := d.(*ast.VarDecl)
		if !ok {
			return nil, &SyntaxError{Position: d.Pos(), Message: "nested function definitions are not supported"}
		}
		return &ast.DeclStmt{Decl: vd, Position: vd.Position}, nil
	default:
		return p.exprStmt()
	}
}

func (p *Parser) compoundStmt() (*ast.CompoundStmt, error) {
	openTok, err := p.expect(token.LBRACE, "expected '{'")
	if err != nil {
		return nil, err
	}
	block := &ast.CompoundStmt{Position: openTok.Position}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	pos := p.previous().Position
	if _, err := p.expect(token.LPAREN, "expected '(' after if"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	if p.match(token.ELSE) {
		elseStmt, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Condition: cond, Then: then, Else: elseStmt, Position: pos}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	pos := p.previous().Position
	if _, err := p.expect(token.LPAREN, "expected '(' after while"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: cond, Body: body, Position: pos}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	pos := p.previous().Position
	if _, err := p.expect(token.LPAREN, "expected '(' after for"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	switch {
	case p.check(token.SEMICOLON):
		p.advance() // consume the bare ';'
	case p.isTypeStart():
		d, err := p.typedDeclaration()
		if err != nil {
			return nil, err
		}
		vd := d.(*ast.VarDecl)
		init = &ast.DeclStmt{Decl: vd, Position: vd.Position}
	default:
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "expected ';' after for-init"); err != nil {
			return nil, err
		}
		init = &ast.ExprStmt{Expression: expr, Position: expr.Pos()}
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		var err error
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after for-condition"); err != nil {
		return nil, err
	}

	var post ast.Expr
	if !p.check(token.RPAREN) {
		var err error
		post, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after for-clauses"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Condition: cond, Post: post, Body: body, Position: pos}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	pos := p.previous().Position
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after return"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: value, Position: pos}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expression: expr, Position: expr.Pos()}, nil
}

// tagLibcCall sets Call.IsLibc/LibcID when callee is a plain identifier
// registered in the libc registry (spec.md §4.2 "Libc-call tagging").
func tagLibcCall(call *ast.Call) {
	ident, ok := call.Callee.(*ast.Ident)
	if !ok {
		return
	}
	entry, ok := libc.Lookup(ident.Name)
	if !ok {
		return
	}
	call.IsLibc = true
	call.LibcID = uint16(entry.ID)
}
