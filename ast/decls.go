package ast

import "astc/token"

// TranslationUnit is the root of the AST for one compilation input: an
// ordered sequence of top-level declarations (spec.md §3).
type TranslationUnit struct {
	Decls    []Decl
	Position token.Position
}

func (u *TranslationUnit) Pos() token.Position { return u.Position }

// Param is one function parameter: its declared type, optional name
// (prototypes may omit it), and source position.
type Param struct {
	Name     string
	Type     TypeNode
	Position token.Position
}

// FuncDecl is a function prototype (Body == nil) or definition (Body !=
// nil).
type FuncDecl struct {
	Name     string
	Return   TypeNode
	Params   []Param
	Variadic bool
	Body     *CompoundStmt // nil for a prototype
	Position token.Position
}

func (d *FuncDecl) Pos() token.Position         { return d.Position }
func (d *FuncDecl) declNode()                    {}
func (d *FuncDecl) AcceptDecl(v DeclVisitor) any { return v.VisitFuncDecl(d) }

// VarDecl is a variable declaration with an optional initializer
// expression.
type VarDecl struct {
	Name        string
	Type        TypeNode
	Initializer Expr // nil if uninitialized
	Position    token.Position
}

func (d *VarDecl) Pos() token.Position         { return d.Position }
func (d *VarDecl) declNode()                    {}
func (d *VarDecl) AcceptDecl(v DeclVisitor) any { return v.VisitVarDecl(d) }

// AggregateKind distinguishes struct, union, and enum declarations, which
// share the same tag-name-plus-member-list shape.
type AggregateKind int

const (
	AggregateStruct AggregateKind = iota
	AggregateUnion
	AggregateEnum
)

// Member is one field of a struct/union, or one enumerator of an enum
// (Type is nil for enumerators; Value, if non-nil, is the enumerator's
// explicit constant expression).
type Member struct {
	Name     string
	Type     TypeNode
	Value    Expr
	Position token.Position
}

// AggregateDecl declares a struct, union, or enum with an optional tag
// name and a member list.
type AggregateDecl struct {
	Kind     AggregateKind
	Tag      string
	Members  []Member
	Position token.Position
}

func (d *AggregateDecl) Pos() token.Position         { return d.Position }
func (d *AggregateDecl) declNode()                    {}
func (d *AggregateDecl) AcceptDecl(v DeclVisitor) any { return v.VisitAggregateDecl(d) }

// ModuleDecl is the `module <name>;` pseudo-declaration.
type ModuleDecl struct {
	Name     string
	Position token.Position
}

func (d *ModuleDecl) Pos() token.Position         { return d.Position }
func (d *ModuleDecl) declNode()                    {}
func (d *ModuleDecl) AcceptDecl(v DeclVisitor) any { return v.VisitModuleDecl(d) }

// ImportDecl is the `import <name> [from <path>];` pseudo-declaration.
type ImportDecl struct {
	Name     string
	Path     string // empty if no `from` clause
	Position token.Position
}

func (d *ImportDecl) Pos() token.Position         { return d.Position }
func (d *ImportDecl) declNode()                    {}
func (d *ImportDecl) AcceptDecl(v DeclVisitor) any { return v.VisitImportDecl(d) }

// ExportDecl is the `export <name>;` pseudo-declaration.
type ExportDecl struct {
	Name     string
	Position token.Position
}

func (d *ExportDecl) Pos() token.Position         { return d.Position }
func (d *ExportDecl) declNode()                    {}
func (d *ExportDecl) AcceptDecl(v DeclVisitor) any { return v.VisitExportDecl(d) }
