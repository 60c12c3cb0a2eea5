// Package driver orchestrates the linear pipeline
// (lex -> parse -> analyse -> evaluate): a source buffer in, a Result
// or a single CompilerError out. The CLI surface proper (flag parsing,
// self-update, file discovery across multiple sources) stays external;
// this package is what a driver calls into.
package driver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/diagnostics"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/interp"
	"github.com/bloch-lang/bloch/internal/lexer"
	"github.com/bloch-lang/bloch/internal/parser"
	"github.com/bloch-lang/bloch/internal/semantic"
	"github.com/bloch-lang/bloch/internal/token"
)

// Config bundles the driver-level knobs the core recognises (shot
// count, echo mode, exit warnings), plus a deterministic base seed for
// reproducible runs.
type Config struct {
	// ShotsFlag is the --shots CLI value; 0 means "not provided" and
	// falls back to 1 unless @shots(N) overrides it.
	ShotsFlag  int
	EchoMode   bool
	WarnOnExit bool
	Seed       int64
}

// DefaultConfig mirrors the evaluator's own defaults (internal/interp.
// defaultOptions): echo on, end-of-run warnings on, one shot absent any
// other instruction.
func DefaultConfig() Config {
	return Config{EchoMode: true, WarnOnExit: true}
}

// Lex runs only the lexer stage.
func Lex(source string) ([]token.Token, *errors.CompilerError) {
	return lexer.New(source).Tokenize()
}

// Parse runs the lexer then the parser, returning the Program AST.
func Parse(source, filename string) (*ast.Program, *errors.CompilerError) {
	toks, err := Lex(source)
	if err != nil {
		return nil, err.WithSource(source, filename)
	}
	p := parser.New(toks).WithSource(source, filename)
	prog, perr := p.ParseProgram()
	if perr != nil {
		return nil, perr.WithSource(source, filename)
	}
	return prog, nil
}

// Analyze runs lex -> parse -> semantic analysis, returning the parsed
// Program alongside the Analyzer holding the resolved class/function
// registry the evaluator needs (internal/interp.Run's first two
// parameters).
func Analyze(source, filename string, sink *diagnostics.Sink) (*ast.Program, *semantic.Analyzer, *errors.CompilerError) {
	prog, err := Parse(source, filename)
	if err != nil {
		return nil, nil, err
	}
	an := semantic.New(sink)
	if err := an.Analyze(prog); err != nil {
		return prog, an, err.WithSource(source, filename)
	}
	return prog, an, nil
}

// Run executes the full pipeline end to end: lex, parse, analyse, then
// drive the shot loop (internal/interp.Run), resolving the shot
// count: `@shots(N)` overrides `--shots=N`, with a non-fatal warning
// on mismatch rather than a fatal error.
func Run(source, filename string, cfg Config, sink *diagnostics.Sink) (*interp.Result, *errors.CompilerError) {
	_, an, err := Analyze(source, filename, sink)
	if err != nil {
		return nil, err
	}

	shots := resolveShots(an, cfg, sink)
	opts := []interp.Option{
		interp.WithEchoMode(cfg.EchoMode),
		interp.WithWarnOnExit(cfg.WarnOnExit),
		interp.WithSeed(cfg.Seed),
	}

	result, rerr := interp.Run(an.Classes(), an.Functions(), an.MainFunc(), sink, shots, opts...)
	if rerr != nil {
		return nil, rerr.WithSource(source, filename)
	}
	return result, nil
}

// resolveShots applies the annotation-over-flag override rule and
// records a mismatch warning through the diagnostics sink rather than
// failing the run.
func resolveShots(an *semantic.Analyzer, cfg Config, sink *diagnostics.Sink) int {
	annotated, count := an.Shots()
	if annotated {
		if cfg.ShotsFlag != 0 && cfg.ShotsFlag != count {
			if sink != nil {
				sink.Warn(diagnostics.ShotsFlagOverridden, token.Position{Line: 1, Column: 1},
					"@shots(%d) overrides --shots=%d", count, cfg.ShotsFlag)
			}
		}
		return count
	}
	if cfg.ShotsFlag > 0 {
		return cfg.ShotsFlag
	}
	return 1
}

// QASMPath derives the sidecar output path for sourcePath:
// <input-basename>.qasm written next to the input.
func QASMPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(sourcePath, ext)
	return base + ".qasm"
}

// WriteQASM writes the QASM trace to its sidecar path next to
// sourcePath. A no-op on an <eval>-style pseudo filename: there is no
// "next to" for inline source.
func WriteQASM(sourcePath, qasm string) error {
	if sourcePath == "" || strings.HasPrefix(sourcePath, "<") {
		return nil
	}
	return os.WriteFile(QASMPath(sourcePath), []byte(qasm), 0o644)
}
