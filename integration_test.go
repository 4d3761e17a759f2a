// Package astc_test chains the full pipeline — lexer, parser, emit, vm,
// forwarder — together against the literal source/exit-status scenarios
// spec.md §8 enumerates, the same full-pipeline idiom the teacher repo's
// own compiler/integration_test.go exercises for Nilan.
package astc_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"astc/emit"
	"astc/forwarder"
	"astc/lexer"
	"astc/parser"
	"astc/vm"
)

// compileAndRun drives src through lex -> parse -> emit -> vm.Run and
// returns the VM's exit status, any runtime error, and the forwarder used
// (so callers can inspect its call-count statistics).
func compileAndRun(t *testing.T, src string) (int, error, *forwarder.Forwarder) {
	t.Helper()

	tokens, lexErrs := lexer.New(src, "t.c").Scan()
	require.Empty(t, lexErrs)

	unit, parseErrs := parser.Make(tokens).Parse()
	require.Empty(t, parseErrs)

	container, emitErrs := emit.Compile(unit, emit.DefaultOptions())
	require.Empty(t, emitErrs)

	fw := forwarder.New(nil)
	require.NoError(t, fw.Init())
	defer fw.Cleanup()

	machine := vm.New(fw, nil)
	status, err := machine.Run(container)
	return status, err, fw
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestScenarioEmptyMain(t *testing.T) {
	status, err, _ := compileAndRun(t, "int main(void) { return 0; }")
	require.NoError(t, err)
	require.Equal(t, 0, status)
}

func TestScenarioArithmetic(t *testing.T) {
	status, err, _ := compileAndRun(t, "int main(void) { return 2 + 3 * 4; }")
	require.NoError(t, err)
	require.Equal(t, 14, status)
}

func TestScenarioLocalVariable(t *testing.T) {
	status, err, _ := compileAndRun(t, "int main(void) { int x = 7; int y = 5; return x - y; }")
	require.NoError(t, err)
	require.Equal(t, 2, status)
}

func TestScenarioLoopSum(t *testing.T) {
	src := `int main(void) {
		int i = 0; int s = 0;
		while (i <= 10) { s = s + i; i = i + 1; }
		return s;
	}`
	status, err, _ := compileAndRun(t, src)
	require.NoError(t, err)
	require.Equal(t, 55, status)
}

func TestScenarioLibcPrint(t *testing.T) {
	var status int
	var err error
	var fw *forwarder.Forwarder

	out := captureStdout(t, func() {
		status, err, fw = compileAndRun(t, `int main(void) { printf("ok\n"); return 0; }`)
	})

	require.NoError(t, err)
	require.Equal(t, 0, status)
	require.Equal(t, "ok\n", out)
	require.EqualValues(t, 1, fw.Stats().TotalCalls)
}

func TestScenarioDivisionByZero(t *testing.T) {
	status, err, _ := compileAndRun(t, "int main(void) { int z = 0; return 1/z; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
	require.NotEqual(t, 0, status)
}
