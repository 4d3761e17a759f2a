package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"astc/lexer"
	"astc/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanSimpleFunctionSignature(t *testing.T) {
	toks, errs := lexer.New("int main() { return 0; }", "t.c").Scan()
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{
		token.INT, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
		token.RETURN, token.INT_LIT, token.SEMICOLON, token.RBRACE, token.EOF,
	}, kinds(toks))
}

func TestScanFloatLiteralWithExponent(t *testing.T) {
	toks, errs := lexer.New("1.5e3;", "t.c").Scan()
	require.Empty(t, errs)
	require.Equal(t, token.FLOAT_LIT, toks[0].Kind)
	require.Equal(t, 1500.0, toks[0].Value)
}

func TestScanStringLiteralDecodesEscapes(t *testing.T) {
	toks, errs := lexer.New(`"a\nb"`, "t.c").Scan()
	require.Empty(t, errs)
	require.Equal(t, token.STRING_LIT, toks[0].Kind)
	require.Equal(t, "a\nb", toks[0].Value)
}

func TestScanMultiCharOperatorsPreferLongestMatch(t *testing.T) {
	toks, errs := lexer.New("<<= >>= <= >= == != && ||", "t.c").Scan()
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{
		token.SHL_ASSIGN, token.SHR_ASSIGN, token.LE, token.GE,
		token.EQ, token.NE, token.AND_AND, token.OR_OR, token.EOF,
	}, kinds(toks))
}

func TestScanUnterminatedStringProducesIllegalTokenAndError(t *testing.T) {
	toks, errs := lexer.New(`"abc`, "t.c").Scan()
	require.NotEmpty(t, errs)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanSkipsLineAndBlockComments(t *testing.T) {
	toks, errs := lexer.New("// comment\nint /* block */ x;", "t.c").Scan()
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{token.INT, token.IDENT, token.SEMICOLON, token.EOF}, kinds(toks))
}

func TestScanPreprocessorDirectiveEmitsHashAndName(t *testing.T) {
	toks, errs := lexer.New("#include <stdio.h>\nint x;", "t.c").Scan()
	require.Empty(t, errs)
	require.Equal(t, token.HASH, toks[0].Kind)
}
