package ast

import "astc/token"

// Primitive is one of the C99 primitive type specifiers spec.md §3 lists:
// void, char, short, int, long, float, double, signed, unsigned.
type Primitive int

const (
	PrimVoid Primitive = iota
	PrimChar
	PrimShort
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
	PrimSigned
	PrimUnsigned
)

// PrimitiveType is a bare type specifier with no pointer/array/function
// wrapping.
type PrimitiveType struct {
	Primitive Primitive
	Position  token.Position
}

func (t *PrimitiveType) Pos() token.Position              { return t.Position }
func (t *PrimitiveType) AcceptType(v TypeVisitor) any      { return v.VisitPrimitiveType(t) }

// PointerType wraps a base type with an indirection depth (`*`, `**`, ...).
type PointerType struct {
	Base       TypeNode
	Indirection int
	Position   token.Position
}

func (t *PointerType) Pos() token.Position         { return t.Position }
func (t *PointerType) AcceptType(v TypeVisitor) any { return v.VisitPointerType(t) }

// ArrayType wraps an element type with an optional size expression and,
// for multi-dimensional declarators, further dimension sizes.
type ArrayType struct {
	Element    TypeNode
	Size       Expr   // nil if unsized, e.g. `int a[]`
	Dimensions []Expr // additional dimension sizes for `a[2][3]`
	Position   token.Position
}

func (t *ArrayType) Pos() token.Position         { return t.Position }
func (t *ArrayType) AcceptType(v TypeVisitor) any { return v.VisitArrayType(t) }

// FuncType is the type of a function: its return type, parameter types,
// and whether it is variadic.
type FuncType struct {
	Return     TypeNode
	Params     []TypeNode
	Variadic   bool
	Position   token.Position
}

func (t *FuncType) Pos() token.Position         { return t.Position }
func (t *FuncType) AcceptType(v TypeVisitor) any { return v.VisitFuncType(t) }
