package interp

import (
	"sort"
	"strconv"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/diagnostics"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/semantic"
)

// Result is everything the driver consumes after the shot loop
// finishes: the cross-shot tracked-outcome table, the OpenQASM 2 trace
// (captured from the final shot, since the trace describes one
// circuit, not N independent runs), and the concatenated stdout every
// shot's echo statements produced.
type Result struct {
	Tracked map[string]map[string]int
	QASM    string
	Stdout  string
}

// Run drives the shot loop: a fresh Evaluator per shot so no state
// leaks across shots, aggregating each shot's Tracked() snapshot into
// a cross-shot count table. The first Runtime error encountered aborts
// the whole run and propagates to the driver; there is no partial
// recovery.
func Run(classes map[string]*semantic.ClassInfo, functions map[string][]*semantic.FunctionInfo, main *ast.FunctionDeclaration, sink *diagnostics.Sink, shots int, opts ...Option) (*Result, *errors.CompilerError) {
	tracked := make(map[string]map[string]int)
	var qasm, stdout string

	for shot := 0; shot < shots; shot++ {
		shotOpts := append(append([]Option{}, opts...), WithShotIsLast(shot == shots-1))
		e := NewEvaluator(classes, functions, sink, shot, shotOpts...)
		if err := e.runMain(main); err != nil {
			return nil, err
		}
		for name, outcome := range e.Tracked() {
			counts, ok := tracked[name]
			if !ok {
				counts = make(map[string]int)
				tracked[name] = counts
			}
			counts[outcome]++
		}
		stdout += e.Stdout()
		if shot == shots-1 {
			qasm = e.QASM()
		}
	}

	return &Result{Tracked: tracked, QASM: qasm, Stdout: stdout}, nil
}

// runMain invokes the program's entry point directly: main takes no
// parameters and its return value (always void) is discarded.
func (e *Evaluator) runMain(main *ast.FunctionDeclaration) *errors.CompilerError {
	savedEnv := e.env
	e.env = NewEnvironment()
	defer func() { e.env = savedEnv }()
	_, err := e.execStmtsNoScope(main.Body.Statements)
	if err != nil {
		return err
	}
	for name, val := range e.env.trackedLocals() {
		e.tracked[name] = e.trackedOutcome(val)
	}
	e.warnUnmeasuredQubits(main)
	return nil
}

// isBinaryOutcome reports whether s is composed entirely of '0'/'1'
// characters (and is non-empty), the shape of a real measurement
// outcome as opposed to the "never measured" sentinel "?".
func isBinaryOutcome(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '0' && r != '1' {
			return false
		}
	}
	return true
}

// SortedOutcomes orders a tracked variable's outcome-count map:
// binary outcome strings ascending by (width, integer value),
// non-binary outcomes (e.g. "?") last, ordered lexically among
// themselves for determinism.
func SortedOutcomes(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		bi, bj := isBinaryOutcome(keys[i]), isBinaryOutcome(keys[j])
		if bi != bj {
			return bi
		}
		if !bi {
			return keys[i] < keys[j]
		}
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		vi, _ := strconv.ParseInt(keys[i], 2, 64)
		vj, _ := strconv.ParseInt(keys[j], 2, 64)
		return vi < vj
	})
	return keys
}
