package ast_test

import (
	"testing"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestWalkVisitsAllDescendants(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.ExpressionStatement{
				Expr: &ast.BinaryExpression{
					Op:   "+",
					Left: &ast.IntLiteral{Value: 1},
					Right: &ast.VariableExpression{
						Name: "x",
					},
				},
			},
		},
	}

	var seen []string
	ast.Walk(prog, func(n ast.Node) {
		switch n.(type) {
		case *ast.Program:
			seen = append(seen, "Program")
		case *ast.ExpressionStatement:
			seen = append(seen, "ExpressionStatement")
		case *ast.BinaryExpression:
			seen = append(seen, "BinaryExpression")
		case *ast.IntLiteral:
			seen = append(seen, "IntLiteral")
		case *ast.VariableExpression:
			seen = append(seen, "VariableExpression")
		}
	})

	assert.Equal(t, []string{
		"Program", "ExpressionStatement", "BinaryExpression", "IntLiteral", "VariableExpression",
	}, seen)
}

func TestEmptyProgramPosDefaultsToOneOne(t *testing.T) {
	assert.Equal(t, token.Position{Line: 1, Column: 1}, (&ast.Program{}).Pos())
}
