package ast

import (
	"testing"

	"github.com/bloch-lang/bloch/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestNodePositionsRoundTrip(t *testing.T) {
	pos := token.Position{Line: 7, Column: 3}
	stmt := &ExpressionStatement{At: At{Position: pos}}
	prog := &Program{Statements: []Statement{stmt}}

	assert.Equal(t, pos, stmt.Pos())
	assert.Equal(t, pos, prog.Pos())
}

func TestVisibilityStrings(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "private", Private.String())
	assert.Equal(t, "protected", Protected.String())
}
