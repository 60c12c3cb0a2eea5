// Package errors provides the closed set of error categories produced by
// the Bloch pipeline, each carrying a source position and formatted with
// source context and a caret pointer.
package errors

import (
	"fmt"
	"strings"

	"github.com/bloch-lang/bloch/internal/token"
)

// Category is the closed set of error kinds a pipeline stage can raise.
type Category int

const (
	// Lexical errors come from the lexer: unterminated literals,
	// malformed numeric suffixes, unknown characters.
	Lexical Category = iota
	// Parse errors come from the parser: grammar violations.
	Parse
	// Semantic errors come from the analyser: unresolved names, type
	// mismatches, annotation misuse, class-hierarchy violations.
	Semantic
	// Runtime errors come from the evaluator during execution.
	Runtime
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "Lexical"
	case Parse:
		return "Parse"
	case Semantic:
		return "Semantic"
	case Runtime:
		return "Runtime"
	default:
		return "Unknown"
	}
}

// CompilerError is a single pipeline failure with a 1-based source
// position and a single-line human-readable message.
type CompilerError struct {
	Category Category
	Pos      token.Position
	Message  string

	source string
	file   string
}

// New constructs a CompilerError. source/file are optional and only used
// to render a caret-annotated snippet via Format.
func New(category Category, pos token.Position, format string, args ...any) *CompilerError {
	return &CompilerError{
		Category: category,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithSource attaches the original source text and file name so Format can
// render a caret-annotated snippet.
func (e *CompilerError) WithSource(source, file string) *CompilerError {
	e.source = source
	e.file = file
	return e
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format renders "<Category> error in <file>:<line>:<col>: <message>"
// (or "<Category> error at <line>:<col>: <message>" when no file name is
// attached), followed by the offending source line and a caret, when
// source text is available.
func (e *CompilerError) Format() string {
	var sb strings.Builder

	loc := fmt.Sprintf("%d:%d", e.Pos.Line, e.Pos.Column)
	if e.file != "" {
		fmt.Fprintf(&sb, "%s error in %s:%s: %s\n", e.Category, e.file, loc, e.Message)
	} else {
		fmt.Fprintf(&sb, "%s error at %s: %s\n", e.Category, loc, e.Message)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		sb.WriteString("^")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (e *CompilerError) sourceLine(line int) string {
	if e.source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(e.source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Bug represents an internal invariant violation — a defect in this
// implementation rather than a problem with the user's program. It is
// kept distinct from the four user-facing categories so drivers never
// confuse the two.
type Bug struct {
	Message string
}

func (b *Bug) Error() string { return "internal error: " + b.Message }

// Bugf constructs a Bug error.
func Bugf(format string, args ...any) *Bug {
	return &Bug{Message: fmt.Sprintf(format, args...)}
}
