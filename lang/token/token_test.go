package token_test

import (
	"testing"

	"github.com/loxlang/glox/lang/token"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		kind token.Kind
		want string
	}{
		{token.LEFT_PAREN, "("},
		{token.EQUAL_EQUAL, "=="},
		{token.IDENTIFIER, "identifier"},
		{token.CLASS, "class"},
		{token.EOF, "end of file"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.kind.String())
	}
}

func TestKeywords(t *testing.T) {
	require.Len(t, token.Keywords, 16)
	for word, kind := range token.Keywords {
		require.Equal(t, word, kind.String())
	}
}

func TestTokenString(t *testing.T) {
	tok := token.Token{Kind: token.NUMBER, Lexeme: "1.5", Literal: 1.5, Line: 3}
	require.Contains(t, tok.String(), "1.5")

	tok2 := token.Token{Kind: token.PLUS, Lexeme: "+", Line: 1}
	require.Equal(t, `+ "+"`, tok2.String())
}
