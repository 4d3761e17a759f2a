package emit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"astc/emit"
	"astc/lexer"
	"astc/parser"
)

func compileSource(t *testing.T, src string, opts emit.Options) emit.Container {
	t.Helper()
	lx := lexer.New(src, "test.c")
	tokens, lexErrs := lx.Scan()
	require.Empty(t, lexErrs)

	p := parser.Make(tokens)
	unit, parseErrs := p.Parse()
	require.Empty(t, parseErrs)

	container, emitErrs := emit.Compile(unit, opts)
	require.Empty(t, emitErrs)
	return container
}

func TestCompileEmptyMainYieldsConstZeroHalt(t *testing.T) {
	c := compileSource(t, "int main() { }", emit.DefaultOptions())
	require.Equal(t, []byte{
		byte(emit.CONST_I32), 0, 0, 0, 0,
		byte(emit.HALT),
	}, []byte(c.Instructions))
}

func TestWhitespaceOnlyTranslationUnitYieldsConstZeroHalt(t *testing.T) {
	c := compileSource(t, "   \n\t ", emit.DefaultOptions())
	require.Equal(t, []byte{
		byte(emit.CONST_I32), 0, 0, 0, 0,
		byte(emit.HALT),
	}, []byte(c.Instructions))
}

func TestConstantFoldingCollapsesArithmetic(t *testing.T) {
	opts := emit.DefaultOptions()
	opts.OptimizeLevel = 1
	c := compileSource(t, "int main() { return 2 + 3 * 4; }", opts)

	require.Equal(t, []byte{
		byte(emit.CONST_I32), 14, 0, 0, 0,
		byte(emit.HALT),
	}, []byte(c.Instructions))
}

func TestDeadCodeEliminationDropsStandaloneConstantStatement(t *testing.T) {
	opts := emit.DefaultOptions()
	opts.OptimizeLevel = 1
	c := compileSource(t, "int main() { 1 + 1; return 5; }", opts)

	dis := emit.Disassemble(c)
	require.NotContains(t, dis, "CONST_I32 2") // the folded-but-dropped `1+1;` statement
	require.Contains(t, dis, "CONST_I32 5")
}

func TestDeadCodeEliminationLeavesCallStatementsAlone(t *testing.T) {
	opts := emit.DefaultOptions()
	opts.OptimizeLevel = 1
	c := compileSource(t, `int main() { printf("hi"); return 0; }`, opts)

	dis := emit.Disassemble(c)
	require.Contains(t, dis, "LIBC_CALL")
}

func TestDivisionByLiteralZeroIsNotFolded(t *testing.T) {
	opts := emit.DefaultOptions()
	opts.OptimizeLevel = 1
	c := compileSource(t, "int main() { return 1 / 0; }", opts)

	dis := emit.Disassemble(c)
	require.Contains(t, dis, "DIV")
}

func TestGlobalVarDeclInitializerEmittedAsTopLevelCode(t *testing.T) {
	c := compileSource(t, "int counter = 7; int main() { return counter; }", emit.DefaultOptions())
	dis := emit.Disassemble(c)
	require.Contains(t, dis, "CONST_I32 7")
	require.Contains(t, dis, "STORE_LOCAL 0")
	require.Contains(t, dis, "LOAD_LOCAL 0")
}

func TestGlobalVarDeclWithoutInitializerEmitsNoCodeButIsResolvable(t *testing.T) {
	// compileSource itself asserts emitErrs is empty; before the fix, the
	// reference to the declared global `counter` would have produced a
	// spurious "undeclared identifier" EmissionWarning here.
	c := compileSource(t, "int counter; int main() { return counter; }", emit.DefaultOptions())
	dis := emit.Disassemble(c)
	require.Contains(t, dis, "LOAD_LOCAL 0")
}

func TestLocalVariableStoreThenLoad(t *testing.T) {
	c := compileSource(t, "int main() { int x = 5; return x; }", emit.DefaultOptions())
	dis := emit.Disassemble(c)
	require.Contains(t, dis, "STORE_LOCAL 0")
	require.Contains(t, dis, "LOAD_LOCAL 0")
}

func TestLoopWithBreakAndContinueResolvesJumps(t *testing.T) {
	src := `int main() {
		int i = 0;
		int total = 0;
		while (i < 10) {
			i = i + 1;
			if (i == 5) { continue; }
			if (i == 9) { break; }
			total = total + i;
		}
		return total;
	}`
	c := compileSource(t, src, emit.DefaultOptions())
	require.NotEmpty(t, c.Instructions)
	// Every BREAK/CONTINUE operand must be patched to a real offset within
	// the instruction stream, never left at the zero placeholder.
	dis := emit.Disassemble(c)
	require.Contains(t, dis, "BREAK")
	require.Contains(t, dis, "CONTINUE")
	require.NotContains(t, dis, " BREAK 0\n")
	require.NotContains(t, dis, " CONTINUE 0\n")
}

func TestForLoopWithNoConditionEmitsUnconditionalBackEdge(t *testing.T) {
	src := `int main() {
		int i = 0;
		for (;;) {
			i = i + 1;
			if (i == 3) { return i; }
		}
	}`
	c := compileSource(t, src, emit.DefaultOptions())
	dis := emit.Disassemble(c)
	require.Contains(t, dis, "JMP") // unconditional back-edge; no condition to test before each iteration
}

func TestLibcCallEmitsArgsCountAndCallID(t *testing.T) {
	c := compileSource(t, `int main() { printf("hi"); }`, emit.DefaultOptions())
	dis := emit.Disassemble(c)
	require.Contains(t, dis, "CONST_STRING")
	require.Contains(t, dis, "CONST_I32 1\n")  // argument count
	require.Contains(t, dis, "CONST_I32 48\n") // printf's call ID, 0x30
	require.Contains(t, dis, "LIBC_CALL")
}

func TestUnrepresentableConstructSkippedWithDiagnostic(t *testing.T) {
	lx := lexer.New("int main() { int a[3]; return a[0]; }", "test.c")
	tokens, lexErrs := lx.Scan()
	require.Empty(t, lexErrs)

	p := parser.Make(tokens)
	unit, parseErrs := p.Parse()
	require.Empty(t, parseErrs)

	container, emitErrs := emit.Compile(unit, emit.DefaultOptions())
	require.NotEmpty(t, emitErrs)
	require.NotEmpty(t, container.Instructions) // emission still yields a well-formed container
}

func TestContainerEncodeDecodeRoundTrip(t *testing.T) {
	c := compileSource(t, "int main() { return 42; }", emit.DefaultOptions())
	encoded := c.Encode()

	decoded, err := emit.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, c.Instructions, decoded.Instructions)
	require.Equal(t, c.Version, decoded.Version)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := emit.Decode([]byte("NOTA00000000000000000000"))
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedInstructionRegion(t *testing.T) {
	c := compileSource(t, "int main() { return 1; }", emit.DefaultOptions())
	encoded := c.Encode()
	_, err := emit.Decode(encoded[:len(encoded)-1])
	require.Error(t, err)
}
