package ast

import "astc/token"

// IntLit is a signed 64-bit integer constant.
type IntLit struct {
	Value    int64
	Position token.Position
}

func (e *IntLit) Pos() token.Position         { return e.Position }
func (e *IntLit) exprNode()                    {}
func (e *IntLit) AcceptExpr(v ExprVisitor) any { return v.VisitIntLit(e) }

// FloatLit is a double-precision floating constant.
type FloatLit struct {
	Value    float64
	Position token.Position
}

func (e *FloatLit) Pos() token.Position         { return e.Position }
func (e *FloatLit) exprNode()                    {}
func (e *FloatLit) AcceptExpr(v ExprVisitor) any { return v.VisitFloatLit(e) }

// StringLit is an escape-decoded string literal's owned bytes.
type StringLit struct {
	Value    string
	Position token.Position
}

func (e *StringLit) Pos() token.Position         { return e.Position }
func (e *StringLit) exprNode()                    {}
func (e *StringLit) AcceptExpr(v ExprVisitor) any { return v.VisitStringLit(e) }

// Ident is a (later-resolved) identifier reference.
type Ident struct {
	Name     string
	Position token.Position
}

func (e *Ident) Pos() token.Position         { return e.Position }
func (e *Ident) exprNode()                    {}
func (e *Ident) AcceptExpr(v ExprVisitor) any { return v.VisitIdent(e) }

// UnaryOp enumerates the unary operators the parser recognizes.
type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryNot   // logical !
	UnaryBitNot
	UnaryDeref  // *p
	UnaryAddr   // &x
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

// Unary is a prefix or postfix unary operation.
type Unary struct {
	Op       UnaryOp
	Operand  Expr
	Position token.Position
}

func (e *Unary) Pos() token.Position         { return e.Position }
func (e *Unary) exprNode()                    {}
func (e *Unary) AcceptExpr(v ExprVisitor) any { return v.VisitUnary(e) }

// BinaryOp enumerates binary and assignment operators, ordered to match
// the precedence table in spec.md §4.2.
type BinaryOp int

const (
	OpMul BinaryOp = iota
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLogicalAnd
	OpLogicalOr
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
)

// IsAssignment reports whether op is `=` or a compound-assignment
// operator — the only right-associative operators in the grammar.
func (op BinaryOp) IsAssignment() bool {
	return op >= OpAssign && op <= OpXorAssign
}

// Binary is a binary operator expression, including assignment (spec.md
// §4.2 treats `=` and the compound-assignment family as binary operators
// at precedence 2, right-associative).
type Binary struct {
	Op       BinaryOp
	Left     Expr
	Right    Expr
	Position token.Position
}

func (e *Binary) Pos() token.Position         { return e.Position }
func (e *Binary) exprNode()                    {}
func (e *Binary) AcceptExpr(v ExprVisitor) any { return v.VisitBinary(e) }

// Call is a function call expression. IsLibc and LibcID are populated
// during parsing (spec.md §4.2 "Libc-call tagging") when Callee is an
// identifier naming a registered libc function; for every other call
// IsLibc is false and LibcID is zero.
type Call struct {
	Callee   Expr
	Args     []Expr
	IsLibc   bool
	LibcID   uint16
	Position token.Position
}

func (e *Call) Pos() token.Position         { return e.Position }
func (e *Call) exprNode()                    {}
func (e *Call) AcceptExpr(v ExprVisitor) any { return v.VisitCall(e) }

// Index is an array subscript expression `array[index]`.
type Index struct {
	Array    Expr
	Subscript Expr
	Position token.Position
}

func (e *Index) Pos() token.Position         { return e.Position }
func (e *Index) exprNode()                    {}
func (e *Index) AcceptExpr(v ExprVisitor) any { return v.VisitIndex(e) }

// MemberAccess is a `.`-member-access expression `object.member`.
type MemberAccess struct {
	Object   Expr
	Name     string
	Position token.Position
}

func (e *MemberAccess) Pos() token.Position         { return e.Position }
func (e *MemberAccess) exprNode()                    {}
func (e *MemberAccess) AcceptExpr(v ExprVisitor) any { return v.VisitMember(e) }

// ArrowMember is a `->`-member-access expression `pointer->member`.
type ArrowMember struct {
	Pointer  Expr
	Name     string
	Position token.Position
}

func (e *ArrowMember) Pos() token.Position         { return e.Position }
func (e *ArrowMember) exprNode()                    {}
func (e *ArrowMember) AcceptExpr(v ExprVisitor) any { return v.VisitArrowMember(e) }

// CompoundLiteral is an ordered list of expressions, e.g. an aggregate
// initializer `{1, 2, 3}`.
type CompoundLiteral struct {
	Elements []Expr
	Position token.Position
}

func (e *CompoundLiteral) Pos() token.Position         { return e.Position }
func (e *CompoundLiteral) exprNode()                    {}
func (e *CompoundLiteral) AcceptExpr(v ExprVisitor) any { return v.VisitCompoundLiteral(e) }
