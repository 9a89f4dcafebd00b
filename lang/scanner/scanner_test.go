package scanner_test

import (
	"testing"

	"github.com/loxlang/glox/lang/scanner"
	"github.com/loxlang/glox/lang/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, err := scanner.Scan("(){},.-+;*!=<=>=//\n/")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR,
		token.BANG_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL, token.SLASH, token.EOF,
	}, kinds(toks))
}

func TestScanStringLiteral(t *testing.T) {
	toks, err := scanner.Scan(`"hello\nworld"`)
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `hello\nworld`, toks[0].Literal)
}

func TestScanMultilineString(t *testing.T) {
	toks, err := scanner.Scan("\"a\nb\" 1")
	require.NoError(t, err)
	require.Equal(t, "a\nb", toks[0].Literal)
	require.Equal(t, 2, toks[1].Line)
}

func TestScanUnterminatedString(t *testing.T) {
	toks, err := scanner.Scan(`"oops`)
	require.Error(t, err)
	require.Equal(t, []token.Kind{token.EOF}, kinds(toks))
}

func TestScanNumber(t *testing.T) {
	toks, err := scanner.Scan("123 1.5")
	require.NoError(t, err)
	require.Equal(t, 123.0, toks[0].Literal)
	require.Equal(t, 1.5, toks[1].Literal)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, err := scanner.Scan("class fun foo")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.CLASS, token.FUN, token.IDENTIFIER, token.EOF}, kinds(toks))
}

func TestScanComments(t *testing.T) {
	toks, err := scanner.Scan("1 // a line comment\n2 /* a\nblock */ 3")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, 3, toks[2].Line)
}

func TestScanUnexpectedCharacterSkipsAndContinues(t *testing.T) {
	toks, err := scanner.Scan("1 @ 2")
	require.Error(t, err)
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
}
