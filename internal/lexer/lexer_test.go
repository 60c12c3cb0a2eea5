package lexer_test

import (
	"testing"

	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/lexer"
	"github.com/bloch-lang/bloch/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	require.Nil(t, err, "unexpected lexical error: %v", err)
	return toks
}

func TestBasicTokens(t *testing.T) {
	toks := tokenize(t, "int x = 1 + 2;")
	kinds := make([]token.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	assert.Equal(t, []token.Kind{
		token.INT_KW, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT, token.SEMICOLON, token.EOF,
	}, kinds)
}

func TestPositions(t *testing.T) {
	toks := tokenize(t, "int x\n= 1;")
	require.Len(t, toks, 6)
	assert.Equal(t, token.Position{Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 5}, toks[1].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 1}, toks[2].Pos)
}

func TestBitLiterals(t *testing.T) {
	toks := tokenize(t, "0b 1b")
	assert.Equal(t, token.BIT, toks[0].Kind)
	assert.Equal(t, "0b", toks[0].Lexeme)
	assert.Equal(t, token.BIT, toks[1].Kind)
	assert.Equal(t, "1b", toks[1].Lexeme)
}

func TestMalformedBitLiteralRejected(t *testing.T) {
	for _, src := range []string{"2b", "10b"} {
		_, err := lexer.New(src).Tokenize()
		require.NotNil(t, err, "expected lexical error for %q", src)
		assert.Equal(t, errors.Lexical, err.Category)
	}
}

func TestFloatRequiresSuffix(t *testing.T) {
	_, err := lexer.New("3.14;").Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, errors.Lexical, err.Category)

	toks := tokenize(t, "3.14f;")
	assert.Equal(t, token.FLOAT, toks[0].Kind)
	assert.Equal(t, "3.14", toks[0].Lexeme)
}

func TestLongSuffix(t *testing.T) {
	toks := tokenize(t, "42L")
	assert.Equal(t, token.LONG, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
}

func TestStringAndCharLiterals(t *testing.T) {
	toks := tokenize(t, `"hello" 'a'`)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "hello", toks[0].Lexeme)
	assert.Equal(t, token.CHAR, toks[1].Kind)
	assert.Equal(t, "a", toks[1].Lexeme)
}

func TestUnterminatedStringIsLexicalError(t *testing.T) {
	_, err := lexer.New(`"unterminated`).Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, errors.Lexical, err.Category)
}

func TestMultiCharOperators(t *testing.T) {
	toks := tokenize(t, "== != <= >= && || ++ -- ->")
	kinds := make([]token.Kind, 0, len(toks)-1)
	for _, tk := range toks {
		if tk.Kind != token.EOF {
			kinds = append(kinds, tk.Kind)
		}
	}
	assert.Equal(t, []token.Kind{
		token.EQ, token.NOT_EQ, token.LESS_EQ, token.GREATER_EQ,
		token.AND, token.OR, token.INC, token.DEC, token.ARROW,
	}, kinds)
}

func TestAnnotationMarker(t *testing.T) {
	toks := tokenize(t, "@quantum @shots(1024) @tracked")
	assert.Equal(t, token.AT, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, "quantum", toks[1].Lexeme)
}

func TestLineComment(t *testing.T) {
	toks := tokenize(t, "int x; // trailing comment\nint y;")
	require.Len(t, toks, 7)
	assert.Equal(t, token.INT_KW, toks[0].Kind)
	assert.Equal(t, token.INT_KW, toks[3].Kind)
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks := tokenize(t, "qubit classField")
	assert.Equal(t, token.QUBIT_KW, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
}

func TestUnknownCharacterIsLexicalError(t *testing.T) {
	_, err := lexer.New("int x = 1 # 2;").Tokenize()
	require.NotNil(t, err)
	assert.Equal(t, errors.Lexical, err.Category)
}
