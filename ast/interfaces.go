// Package ast defines the tagged-variant abstract syntax tree produced by
// the parser: declarations, type forms, statements, and expressions. Every
// node carries a source position. Ownership is strictly tree-shaped — a
// node owns its children, and there is no sharing or cycles — so a
// depth-first Visitor traversal is the only operation the tree needs
// beyond construction.
package ast

import "astc/token"

// Node is implemented by every AST node and exposes its source position.
type Node interface {
	Pos() token.Position
}

// Decl is the base interface for top-level declarations. Each concrete
// declaration type dispatches to the matching DeclVisitor method.
type Decl interface {
	Node
	AcceptDecl(v DeclVisitor) any
}

// TypeNode is the base interface for type forms (primitive, pointer,
// array, function type).
type TypeNode interface {
	Node
	AcceptType(v TypeVisitor) any
}

// Stmt is the base interface for statement nodes.
type Stmt interface {
	Node
	AcceptStmt(v StmtVisitor) any
}

// Expr is the base interface for expression nodes. Every expression
// evaluates to a value.
type Expr interface {
	Node
	AcceptExpr(v ExprVisitor) any
}

// DeclVisitor operates on every Decl variant.
type DeclVisitor interface {
	VisitFuncDecl(d *FuncDecl) any
	VisitVarDecl(d *VarDecl) any
	VisitAggregateDecl(d *AggregateDecl) any
	VisitModuleDecl(d *ModuleDecl) any
	VisitImportDecl(d *ImportDecl) any
	VisitExportDecl(d *ExportDecl) any
}

// TypeVisitor operates on every TypeNode variant.
type TypeVisitor interface {
	VisitPrimitiveType(t *PrimitiveType) any
	VisitPointerType(t *PointerType) any
	VisitArrayType(t *ArrayType) any
	VisitFuncType(t *FuncType) any
}

// StmtVisitor operates on every Stmt variant.
type StmtVisitor interface {
	VisitCompoundStmt(s *CompoundStmt) any
	VisitIfStmt(s *IfStmt) any
	VisitWhileStmt(s *WhileStmt) any
	VisitForStmt(s *ForStmt) any
	VisitReturnStmt(s *ReturnStmt) any
	VisitBreakStmt(s *BreakStmt) any
	VisitContinueStmt(s *ContinueStmt) any
	VisitExprStmt(s *ExprStmt) any
	VisitDeclStmt(s *DeclStmt) any
}

// ExprVisitor operates on every Expr variant.
type ExprVisitor interface {
	VisitIntLit(e *IntLit) any
	VisitFloatLit(e *FloatLit) any
	VisitStringLit(e *StringLit) any
	VisitIdent(e *Ident) any
	VisitUnary(e *Unary) any
	VisitBinary(e *Binary) any
	VisitCall(e *Call) any
	VisitIndex(e *Index) any
	VisitMember(e *MemberAccess) any
	VisitArrowMember(e *ArrowMember) any
	VisitCompoundLiteral(e *CompoundLiteral) any
}
