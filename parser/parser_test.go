package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"astc/ast"
	"astc/lexer"
	"astc/parser"
)

func parse(t *testing.T, src string) (*ast.TranslationUnit, []error) {
	t.Helper()
	tokens, lexErrs := lexer.New(src, "t.c").Scan()
	require.Empty(t, lexErrs)
	return parser.Make(tokens).Parse()
}

func TestParseMainFunctionWithReturn(t *testing.T) {
	unit, errs := parse(t, "int main() { return 0; }")
	require.Empty(t, errs)
	require.Len(t, unit.Decls, 1)
	fn, ok := unit.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "main", fn.Name)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Statements, 1)
	_, ok = fn.Body.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
}

func TestParseFunctionPrototypeHasNilBody(t *testing.T) {
	unit, errs := parse(t, "int add(int a, int b);")
	require.Empty(t, errs)
	fn := unit.Decls[0].(*ast.FuncDecl)
	require.Nil(t, fn.Body)
	require.Len(t, fn.Params, 2)
}

func TestParseVariadicParamList(t *testing.T) {
	unit, errs := parse(t, "int printf(char* fmt, ...);")
	require.Empty(t, errs)
	fn := unit.Decls[0].(*ast.FuncDecl)
	require.True(t, fn.Variadic)
}

func TestParseLibcCallIsTagged(t *testing.T) {
	unit, errs := parse(t, `int main() { printf("hi"); return 0; }`)
	require.Empty(t, errs)
	fn := unit.Decls[0].(*ast.FuncDecl)
	exprStmt := fn.Body.Statements[0].(*ast.ExprStmt)
	call := exprStmt.Expression.(*ast.Call)
	require.True(t, call.IsLibc)
}

func TestParseIfElseAndWhile(t *testing.T) {
	unit, errs := parse(t, `
	int main() {
		int i;
		i = 0;
		while (i < 10) {
			if (i == 5) { break; } else { i = i + 1; }
		}
		return i;
	}`)
	require.Empty(t, errs)
	fn := unit.Decls[0].(*ast.FuncDecl)
	var foundWhile bool
	for _, s := range fn.Body.Statements {
		if _, ok := s.(*ast.WhileStmt); ok {
			foundWhile = true
		}
	}
	require.True(t, foundWhile)
}

func TestParseErrorRecoversAtNextDeclaration(t *testing.T) {
	unit, errs := parse(t, "int main( { return 0; } int other() { return 1; }")
	require.NotEmpty(t, errs)
	var names []string
	for _, d := range unit.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			names = append(names, fn.Name)
		}
	}
	require.Contains(t, names, "other")
}
