// Package ast defines the Abstract Syntax Tree node types produced by the
// parser: three variant families (Statement, Expression, Type) plus
// declaration nodes. Every node carries a 1-based source position;
// child ownership is exclusive (no node is shared, no back references).
package ast

import "github.com/bloch-lang/bloch/internal/token"

// Node is the base capability every AST node provides: its source
// position.
type Node interface {
	Pos() token.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is any node that performs an action without producing a
// value.
type Statement interface {
	Node
	stmtNode()
}

// Type is any node describing a type reference.
type Type interface {
	Node
	typeNode()
}

// At embeds a source position into every concrete node so individual node
// types only need to declare their data fields and a marker method.
type At struct {
	Position token.Position
}

func (a At) Pos() token.Position { return a.Position }

// NewAt lets other packages (the parser) build the embeddable position
// struct without reaching into an unexported field.
func NewAt(pos token.Position) At { return At{Position: pos} }

// Visibility is the closed set of member-access modifiers.
type Visibility int

const (
	Public Visibility = iota
	Private
	Protected
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// Program is the root of the AST: ordered class/function declarations and
// top-level statements, plus the @shots annotation state.
type Program struct {
	Package    *PackageDeclaration
	Imports    []*ImportDeclaration
	Classes    []*ClassDeclaration
	Functions  []*FunctionDeclaration
	Statements []Statement

	// ShotsAnnotated/ShotsCount record whether @shots(N) decorated
	// main, and with what count; populated by the parser.
	ShotsAnnotated bool
	ShotsCount     int
}

// Pos returns the position of the first declaration in the program, or
// {1,1} for an empty program.
func (p *Program) Pos() token.Position {
	if p.Package != nil {
		return p.Package.Pos()
	}
	if len(p.Imports) > 0 {
		return p.Imports[0].Pos()
	}
	if len(p.Classes) > 0 {
		return p.Classes[0].Pos()
	}
	if len(p.Functions) > 0 {
		return p.Functions[0].Pos()
	}
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}
