package emit

import (
	"fmt"
	"hash/fnv"
	"math"

	"astc/ast"
)

type localVar struct {
	name  string
	depth int
	slot  uint32
}

type loopContext struct {
	continuePatches []int // positions of CONTINUE instructions awaiting their target operand
	breakPatches    []int // positions of BREAK instructions awaiting their target operand
}

// Emitter walks a translation unit's `main` function and lowers it to a
// flat instruction stream, following the visitor-dispatch structure the
// teacher repo's ASTCompiler uses (Accept-driven traversal, emit/patch
// helpers, a local-variable slot table) generalized to this bytecode
// target's opcode set (spec.md §4.4).
type Emitter struct {
	instructions Instructions
	locals       []localVar
	scopeDepth   int
	nextSlot     uint32
	sentinelSlot uint32
	haveSentinel bool
	loops        []*loopContext
	errors       []error
	opts         Options
}

// Compile lowers unit into a bytecode Container. It never fails outright:
// unrepresentable constructs are skipped with a recorded diagnostic, and
// the returned container is always well-formed (spec.md §4.4 "Failure
// semantics").
func Compile(unit *ast.TranslationUnit, opts Options) (Container, []error) {
	e := &Emitter{opts: opts}

	for _, d := range unit.Decls {
		if vd, ok := d.(*ast.VarDecl); ok {
			e.emitGlobalVarDecl(vd, opts.OptimizeLevel >= 1)
		}
	}

	main := findMain(unit)
	if main == nil || main.Body == nil {
		e.emitConstI32(0)
		e.emitOp(HALT)
		return e.container(), e.errors
	}

	if opts.OptimizeLevel >= 1 {
		foldStmt(main.Body)
	}

	for _, param := range main.Params {
		e.declareLocal(param.Name)
	}
	e.compileCompound(main.Body, opts.OptimizeLevel >= 1)

	if !endsWithControlTransfer(main.Body) {
		e.emitConstI32(0)
		e.emitOp(HALT)
	}

	return e.container(), e.errors
}

// emitGlobalVarDecl registers a top-level VarDecl's name in the emitter's
// symbol table — at the outermost scope depth, so it outlives main's own
// scope — and emits its initializer as top-level code if present. Global
// variable declarations otherwise contribute no instructions of their own
// (spec.md §4.4 "Translation unit": "Global variable declarations ...
// contribute no instructions ... but their initializers are emitted as
// top-level code if present"). Registering the name here, before main is
// compiled, is what lets VisitIdent resolve a reference to a global
// instead of misreporting it as undeclared.
func (e *Emitter) emitGlobalVarDecl(vd *ast.VarDecl, optimize bool) {
	if optimize && vd.Initializer != nil {
		vd.Initializer = foldConstants(vd.Initializer)
	}
	slot := e.declareLocal(vd.Name)
	if vd.Initializer != nil {
		vd.Initializer.AcceptExpr(e)
		e.emitSimple(STORE_LOCAL, slot)
	}
}

func findMain(unit *ast.TranslationUnit) *ast.FuncDecl {
	for _, d := range unit.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Name == "main" {
			return fd
		}
	}
	return nil
}

// endsWithControlTransfer reports whether stmt's last reachable statement
// is a return, matching the case where the function body already halts
// execution on every path so emitter.Compile should not append a second
// implicit `CONST_I32 0; HALT`.
func endsWithControlTransfer(body *ast.CompoundStmt) bool {
	if len(body.Statements) == 0 {
		return false
	}
	_, ok := body.Statements[len(body.Statements)-1].(*ast.ReturnStmt)
	return ok
}

func (e *Emitter) container() Container {
	return Container{Version: 1, Instructions: e.instructions}
}

// --- emission primitives ---

func (e *Emitter) emitOp(op Opcode) int {
	pos := len(e.instructions)
	e.instructions = append(e.instructions, makeSimple(op)...)
	return pos
}

func (e *Emitter) emitSimple(op Opcode, operand uint32) int {
	pos := len(e.instructions)
	e.instructions = append(e.instructions, makeInstruction(op, operand)...)
	return pos
}

func (e *Emitter) emitConstI32(v int32) int {
	return e.emitSimple(CONST_I32, uint32(v))
}

func (e *Emitter) emitConstString(s string) {
	e.instructions = append(e.instructions, makeConstString(s)...)
}

// emitPlaceholder emits op with a zero operand and returns its position, to
// be resolved later by patch (spec.md §4.4 "branch targets ... reserves a
// 4-byte slot ... then patches").
func (e *Emitter) emitPlaceholder(op Opcode) int {
	return e.emitSimple(op, 0)
}

func (e *Emitter) patch(pos int, target uint32) {
	putUint32(e.instructions[pos+1:pos+5], target)
}

func (e *Emitter) here() uint32 {
	return uint32(len(e.instructions))
}

func (e *Emitter) errorf(pos ast.Node, format string, args ...any) {
	e.errors = append(e.errors, &EmissionError{Position: pos.Pos(), Message: fmt.Sprintf(format, args...)})
}

// --- scope / local-variable table ---

func (e *Emitter) beginScope() { e.scopeDepth++ }

func (e *Emitter) endScope() {
	e.scopeDepth--
	for len(e.locals) > 0 && e.locals[len(e.locals)-1].depth > e.scopeDepth {
		e.locals = e.locals[:len(e.locals)-1]
	}
}

func (e *Emitter) declareLocal(name string) uint32 {
	slot := e.nextSlot
	e.nextSlot++
	e.locals = append(e.locals, localVar{name: name, depth: e.scopeDepth, slot: slot})
	return slot
}

func (e *Emitter) resolveLocal(name string) (uint32, bool) {
	for i := len(e.locals) - 1; i >= 0; i-- {
		if e.locals[i].name == name {
			return e.locals[i].slot, true
		}
	}
	return 0, false
}

func (e *Emitter) sentinel() uint32 {
	if !e.haveSentinel {
		e.sentinelSlot = e.nextSlot
		e.nextSlot++
		e.haveSentinel = true
	}
	return e.sentinelSlot
}

// --- statements ---

func (e *Emitter) compileCompound(block *ast.CompoundStmt, optimize bool) {
	e.beginScope()
	stmts := block.Statements
	if optimize {
		stmts = eliminateDeadCode(stmts)
	}
	for _, s := range stmts {
		s.AcceptStmt(e)
	}
	e.endScope()
}

func (e *Emitter) VisitCompoundStmt(s *ast.CompoundStmt) any {
	e.compileCompound(s, e.opts.OptimizeLevel >= 1)
	return nil
}

func (e *Emitter) VisitIfStmt(s *ast.IfStmt) any {
	s.Condition.AcceptExpr(e)
	jzPos := e.emitPlaceholder(JZ)
	s.Then.AcceptStmt(e)

	if s.Else != nil {
		jmpPos := e.emitPlaceholder(JMP)
		e.patch(jzPos, e.here())
		s.Else.AcceptStmt(e)
		e.patch(jmpPos, e.here())
	} else {
		e.patch(jzPos, e.here())
	}
	return nil
}

func (e *Emitter) VisitWhileStmt(s *ast.WhileStmt) any {
	loopStart := e.here()
	loop := &loopContext{}
	e.loops = append(e.loops, loop)

	s.Condition.AcceptExpr(e)
	jzPos := e.emitPlaceholder(JZ)
	s.Body.AcceptStmt(e)
	e.emitSimple(JMP, loopStart)

	exit := e.here()
	e.patch(jzPos, exit)
	e.resolveLoopPatches(loop, loopStart, exit)
	e.loops = e.loops[:len(e.loops)-1]
	return nil
}

func (e *Emitter) VisitForStmt(s *ast.ForStmt) any {
	e.beginScope()
	if s.Init != nil {
		s.Init.AcceptStmt(e)
	}

	loopStart := e.here()
	loop := &loopContext{}
	e.loops = append(e.loops, loop)

	var jzPos int
	hasCond := s.Condition != nil
	if hasCond {
		s.Condition.AcceptExpr(e)
		jzPos = e.emitPlaceholder(JZ)
	}

	s.Body.AcceptStmt(e)

	postStart := e.here()
	if s.Post != nil {
		s.Post.AcceptExpr(e)
		e.emitOp(DROP)
	}
	e.emitSimple(JMP, loopStart)

	exit := e.here()
	if hasCond {
		e.patch(jzPos, exit)
	}
	e.resolveLoopPatches(loop, postStart, exit)
	e.loops = e.loops[:len(e.loops)-1]
	e.endScope()
	return nil
}

// resolveLoopPatches backpatches every break/continue recorded while
// emitting loop's body. continueTarget is where `continue` jumps to (the
// loop's re-test or post-expression); breakTarget is the instruction
// immediately past the loop.
func (e *Emitter) resolveLoopPatches(loop *loopContext, continueTarget, breakTarget uint32) {
	for _, pos := range loop.continuePatches {
		e.patch(pos, continueTarget)
	}
	for _, pos := range loop.breakPatches {
		e.patch(pos, breakTarget)
	}
}

func (e *Emitter) VisitReturnStmt(s *ast.ReturnStmt) any {
	if s.Value != nil {
		s.Value.AcceptExpr(e)
	} else {
		e.emitConstI32(0)
	}
	e.emitOp(HALT)
	return nil
}

func (e *Emitter) VisitBreakStmt(s *ast.BreakStmt) any {
	if len(e.loops) == 0 {
		e.errorf(s, "break outside of a loop")
		return nil
	}
	loop := e.loops[len(e.loops)-1]
	pos := e.emitPlaceholder(BREAK)
	loop.breakPatches = append(loop.breakPatches, pos)
	return nil
}

func (e *Emitter) VisitContinueStmt(s *ast.ContinueStmt) any {
	if len(e.loops) == 0 {
		e.errorf(s, "continue outside of a loop")
		return nil
	}
	loop := e.loops[len(e.loops)-1]
	pos := e.emitPlaceholder(CONTINUE)
	loop.continuePatches = append(loop.continuePatches, pos)
	return nil
}

func (e *Emitter) VisitExprStmt(s *ast.ExprStmt) any {
	s.Expression.AcceptExpr(e)
	e.emitOp(DROP)
	return nil
}

func (e *Emitter) VisitDeclStmt(s *ast.DeclStmt) any {
	vd, ok := s.Decl.(*ast.VarDecl)
	if !ok {
		// module/import/export in statement position: metadata only,
		// no instructions (spec.md §4.4 "compile-time only").
		return nil
	}
	slot := e.declareLocal(vd.Name)
	if vd.Initializer != nil {
		vd.Initializer.AcceptExpr(e)
		e.emitSimple(STORE_LOCAL, slot)
	}
	return nil
}

// --- expressions ---

func (e *Emitter) VisitIntLit(n *ast.IntLit) any {
	e.emitConstI32(int32(n.Value))
	return nil
}

func (e *Emitter) VisitFloatLit(n *ast.FloatLit) any {
	bits := math.Float32bits(float32(n.Value))
	e.emitSimple(CONST_F32, bits)
	return nil
}

func (e *Emitter) VisitStringLit(n *ast.StringLit) any {
	e.emitConstString(n.Value)
	return nil
}

func (e *Emitter) VisitIdent(n *ast.Ident) any {
	if slot, ok := e.resolveLocal(n.Name); ok {
		e.emitSimple(LOAD_LOCAL, slot)
		return nil
	}
	e.errors = append(e.errors, &EmissionWarning{Position: n.Position, Message: "undeclared identifier '" + n.Name + "'"})
	e.emitSimple(LOAD_LOCAL, e.sentinel())
	return nil
}

func (e *Emitter) VisitUnary(n *ast.Unary) any {
	switch n.Op {
	case ast.UnaryMinus:
		e.emitConstI32(0)
		n.Operand.AcceptExpr(e)
		e.emitOp(SUB)
	case ast.UnaryPlus:
		n.Operand.AcceptExpr(e)
	case ast.UnaryNot:
		n.Operand.AcceptExpr(e)
		e.emitConstI32(0)
		e.emitOp(EQ)
	case ast.UnaryBitNot:
		n.Operand.AcceptExpr(e)
		e.emitOp(NOT)
	case ast.UnaryDeref, ast.UnaryAddr:
		e.errorf(n, "pointer operator is not implemented by this lowering")
	default:
		e.errorf(n, "unsupported unary operator")
	}
	return nil
}

var simpleBinaryOps = map[ast.BinaryOp]Opcode{
	ast.OpAdd: ADD, ast.OpSub: SUB, ast.OpMul: MUL, ast.OpDiv: DIV, ast.OpMod: MOD,
	ast.OpEq: EQ, ast.OpNe: NE, ast.OpLt: LT, ast.OpLe: LE, ast.OpGt: GT, ast.OpGe: GE,
	ast.OpBitAnd: AND, ast.OpLogicalAnd: AND,
	ast.OpBitOr: OR, ast.OpLogicalOr: OR,
}

var compoundAssignOps = map[ast.BinaryOp]Opcode{
	ast.OpAddAssign: ADD, ast.OpSubAssign: SUB, ast.OpMulAssign: MUL,
	ast.OpDivAssign: DIV, ast.OpModAssign: MOD,
	ast.OpAndAssign: AND, ast.OpOrAssign: OR,
}

func (e *Emitter) VisitBinary(n *ast.Binary) any {
	if n.Op.IsAssignment() {
		e.compileAssignment(n)
		return nil
	}

	op, ok := simpleBinaryOps[n.Op]
	if !ok {
		e.errorf(n, "operator is not representable in this bytecode target")
		return nil
	}
	n.Left.AcceptExpr(e)
	n.Right.AcceptExpr(e)
	e.emitOp(op)
	return nil
}

// compileAssignment lowers `=` and the compound-assignment family. The
// value of an assignment expression is always zero (spec.md §4.4: "push a
// zero as the expression's value").
func (e *Emitter) compileAssignment(n *ast.Binary) any {
	ident, ok := n.Left.(*ast.Ident)
	if !ok {
		e.errorf(n, "assignment target must be an identifier")
		n.Right.AcceptExpr(e)
		e.emitOp(DROP)
		e.emitConstI32(0)
		return nil
	}

	slot, found := e.resolveLocal(ident.Name)
	if !found {
		e.errors = append(e.errors, &EmissionWarning{Position: ident.Position, Message: "undeclared identifier '" + ident.Name + "'"})
		slot = e.sentinel()
	}

	if n.Op == ast.OpAssign {
		n.Right.AcceptExpr(e)
		e.emitSimple(STORE_LOCAL, slot)
		e.emitConstI32(0)
		return nil
	}

	op, ok := compoundAssignOps[n.Op]
	if !ok {
		e.errorf(n, "compound-assignment operator is not representable in this bytecode target")
		n.Right.AcceptExpr(e)
		e.emitOp(DROP)
		e.emitConstI32(0)
		return nil
	}

	e.emitSimple(LOAD_LOCAL, slot)
	n.Right.AcceptExpr(e)
	e.emitOp(op)
	e.emitSimple(STORE_LOCAL, slot)
	e.emitConstI32(0)
	return nil
}

// libcNameHash hashes a non-libc callee name into the 32-bit value
// USER_CALL dispatches on; the VM has no function table to resolve it
// against (spec.md §9 Open Questions).
func libcNameHash(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

func (e *Emitter) VisitCall(n *ast.Call) any {
	for _, arg := range n.Args {
		arg.AcceptExpr(e)
	}
	e.emitConstI32(int32(len(n.Args)))

	if n.IsLibc {
		e.emitConstI32(int32(n.LibcID))
		e.emitOp(LIBC_CALL)
		return nil
	}

	name := ""
	if ident, ok := n.Callee.(*ast.Ident); ok {
		name = ident.Name
	}
	e.emitSimple(CONST_I32, libcNameHash(name))
	e.emitOp(USER_CALL)
	return nil
}

func (e *Emitter) VisitIndex(n *ast.Index) any {
	e.errorf(n, "array subscript is not representable in this bytecode target")
	return nil
}

func (e *Emitter) VisitMember(n *ast.MemberAccess) any {
	e.errorf(n, "member access is not representable in this bytecode target")
	return nil
}

func (e *Emitter) VisitArrowMember(n *ast.ArrowMember) any {
	e.errorf(n, "arrow member access is not representable in this bytecode target")
	return nil
}

func (e *Emitter) VisitCompoundLiteral(n *ast.CompoundLiteral) any {
	e.errorf(n, "compound literal is not representable in this bytecode target")
	return nil
}
