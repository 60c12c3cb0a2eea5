package parser_test

import (
	"testing"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/lexer"
	"github.com/bloch-lang/bloch/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, lexErr := lexer.New(src).Tokenize()
	require.Nil(t, lexErr, "lex error: %v", lexErr)
	prog, err := parser.New(tokens).WithSource(src, "test.bloch").ParseProgram()
	require.Nil(t, err, "parse error: %v", err)
	return prog
}

func TestParsesEmptyMainFunction(t *testing.T) {
	prog := parseProgram(t, `function main() -> void { }`)
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "main", prog.Functions[0].Name)
	assert.IsType(t, &ast.VoidType{}, prog.Functions[0].ReturnType)
}

func TestShotsAnnotationRecordedOnProgram(t *testing.T) {
	prog := parseProgram(t, `@shots(500) function main() -> void { }`)
	assert.True(t, prog.ShotsAnnotated)
	assert.Equal(t, 500, prog.ShotsCount)
}

func TestVarDeclVsExpressionStatementDisambiguation(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			int x = 1;
			Counter c = new Counter();
			c.increment();
			x = x + 1;
		}
	`)
	body := prog.Functions[0].Body.Statements
	require.Len(t, body, 4)
	assert.IsType(t, &ast.VarDeclStatement{}, body[0])
	assert.IsType(t, &ast.VarDeclStatement{}, body[1])
	assert.IsType(t, &ast.ExpressionStatement{}, body[2])
	assert.IsType(t, &ast.ExpressionStatement{}, body[3])
}

func TestQubitMultiDeclare(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			qubit a, b;
		}
	`)
	decl := prog.Functions[0].Body.Statements[0].(*ast.VarDeclStatement)
	assert.Equal(t, []string{"a", "b"}, decl.Names)
}

func TestNonQubitMultiDeclareIsParseError(t *testing.T) {
	tokens, lexErr := lexer.New(`function main() -> void { int a, b; }`).Tokenize()
	require.Nil(t, lexErr)
	_, err := parser.New(tokens).ParseProgram()
	require.NotNil(t, err)
}

func TestCastExpression(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			float f = 1.0f;
			int x = (int)f;
		}
	`)
	decl := prog.Functions[0].Body.Statements[1].(*ast.VarDeclStatement)
	cast, ok := decl.Initializers[0].(*ast.CastExpression)
	require.True(t, ok)
	prim, ok := cast.Target.(*ast.PrimitiveType)
	require.True(t, ok)
	assert.Equal(t, ast.Int, prim.Kind)
}

func TestMeasureStatementVsExpression(t *testing.T) {
	prog := parseProgram(t, `
		@quantum function main() -> void {
			qubit q;
			measure q;
			bit result = measure q;
		}
	`)
	body := prog.Functions[0].Body.Statements
	assert.IsType(t, &ast.MeasureStatement{}, body[1])
	decl := body[2].(*ast.VarDeclStatement)
	assert.IsType(t, &ast.MeasureExpression{}, decl.Initializers[0])
}

func TestTernaryStatement(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			int x = 1;
			x > 0 ? echo(x) : echo(0);
		}
	`)
	stmt, ok := prog.Functions[0].Body.Statements[1].(*ast.TernaryStatement)
	require.True(t, ok)
	assert.IsType(t, &ast.EchoStatement{}, stmt.Then)
	assert.IsType(t, &ast.EchoStatement{}, stmt.Else)
}

func TestOperatorPrecedence(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			int x = 1 + 2 * 3;
		}
	`)
	decl := prog.Functions[0].Body.Statements[0].(*ast.VarDeclStatement)
	bin := decl.Initializers[0].(*ast.BinaryExpression)
	assert.Equal(t, "+", bin.Op)
	right := bin.Right.(*ast.BinaryExpression)
	assert.Equal(t, "*", right.Op)
}

func TestBitwiseOperatorChain(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			bit b = 1b & 0b | 1b ^ 0b;
		}
	`)
	decl := prog.Functions[0].Body.Statements[0].(*ast.VarDeclStatement)
	top := decl.Initializers[0].(*ast.BinaryExpression)
	assert.Equal(t, "|", top.Op)
}

func TestArrayLiteralAndIndex(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			int[] xs = {1, 2, 3};
			int y = xs[0];
		}
	`)
	decl := prog.Functions[0].Body.Statements[0].(*ast.VarDeclStatement)
	lit := decl.Initializers[0].(*ast.ArrayLiteralExpression)
	assert.Len(t, lit.Elements, 3)
}

func TestNestedArrayLiteralRejected(t *testing.T) {
	tokens, lexErr := lexer.New(`function main() -> void { int[] xs = {{1}}; }`).Tokenize()
	require.Nil(t, lexErr)
	_, err := parser.New(tokens).ParseProgram()
	require.NotNil(t, err)
}

func TestGenericNewExpressionWithDiamond(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			Box<int> b = new Box<>();
		}
	`)
	decl := prog.Functions[0].Body.Statements[0].(*ast.VarDeclStatement)
	newExpr := decl.Initializers[0].(*ast.NewExpression)
	assert.Empty(t, newExpr.Type.TypeArgs)
	ty := decl.Type.(*ast.NamedType)
	require.Len(t, ty.TypeArgs, 1)
}

func TestClassDeclarationWithConstructorAndSuperCall(t *testing.T) {
	prog := parseProgram(t, `
		class Animal {
			constructor() -> Animal { }
		}
		class Dog extends Animal {
			private int legs;
			constructor(int legs) -> Dog {
				super();
				this.legs = legs;
			}
			function bark() -> void { echo("woof"); }
		}
	`)
	require.Len(t, prog.Classes, 2)
	dog := prog.Classes[1]
	assert.Equal(t, "Animal", dog.BaseClass.Name)
	require.Len(t, dog.Constructors, 1)
	assert.True(t, dog.Constructors[0].HasSuperCall)
	require.Len(t, dog.Methods, 1)
	assert.Equal(t, "bark", dog.Methods[0].Name)
}

func TestAbstractClassWithVirtualBodylessMethod(t *testing.T) {
	prog := parseProgram(t, `
		abstract class Shape {
			virtual function area() -> float;
		}
	`)
	shape := prog.Classes[0]
	assert.True(t, shape.IsAbstract)
	require.Len(t, shape.Methods, 1)
	assert.Nil(t, shape.Methods[0].Body)
}

func TestDefaultConstructor(t *testing.T) {
	prog := parseProgram(t, `
		class Point {
			constructor() -> Point = default;
		}
	`)
	ctor := prog.Classes[0].Constructors[0]
	assert.True(t, ctor.IsDefault)
	assert.Nil(t, ctor.Body)
}

func TestForLoop(t *testing.T) {
	prog := parseProgram(t, `
		function main() -> void {
			for (int i = 0; i < 10; i++) {
				echo(i);
			}
		}
	`)
	forStmt := prog.Functions[0].Body.Statements[0].(*ast.ForStatement)
	assert.IsType(t, &ast.VarDeclStatement{}, forStmt.Init)
	assert.NotNil(t, forStmt.Cond)
	assert.NotNil(t, forStmt.Post)
}

func TestUnexpectedTokenIsParseError(t *testing.T) {
	tokens, lexErr := lexer.New(`function main() -> void { int x = ; }`).Tokenize()
	require.Nil(t, lexErr)
	_, err := parser.New(tokens).ParseProgram()
	require.NotNil(t, err)
}
