package interp

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/bloch-lang/bloch/internal/ast"
	"github.com/bloch-lang/bloch/internal/diagnostics"
	"github.com/bloch-lang/bloch/internal/errors"
	"github.com/bloch-lang/bloch/internal/semantic"
)

// maxCallDepth bounds recursion depth; exceeding it is reported as a
// Runtime "stack overflow" error rather than crashing the host
// process.
const maxCallDepth = 2000

// signal carries control flow out of statement execution: either a
// function return (with its value), or nil to mean "fell off the end,
// keep going". Bloch's statement grammar has no break/continue, so a
// single returning/non-returning signal is all execBlock needs to
// propagate; the language has no break/continue to carry alongside.
type signal struct {
	isReturn bool
	value    Value
}

// Evaluator is one shot's worth of runtime state: a tree-walking
// interpreter over classical Values fused with a statevector simulator,
// an object heap, and an OpenQASM 2 trace builder. A fresh Evaluator is
// constructed per shot so no state leaks across shots; see
// internal/interp/shots.go for the loop that builds one per shot and
// aggregates their tracked outcomes.
type Evaluator struct {
	opts Options
	sink *diagnostics.Sink

	classes   map[string]*semantic.ClassInfo
	functions map[string][]*semantic.FunctionInfo

	heap *Heap
	sim  *Simulator
	qasm *qasmLog

	globals *Environment
	env     *Environment

	thisStack []*Object

	stdout strings.Builder

	// tracked accumulates this shot's final outcome string per
	// @tracked variable/field name, snapshotted at scope exit or
	// object destruction.
	tracked map[string]string

	// trackedQubits records every qubit index that ever passed through
	// trackedOutcome, so the end-of-run unmeasured-qubit warning can
	// skip qubits that were already tracked explicitly.
	trackedQubits map[int]bool

	rng       *rand.Rand
	callDepth int
}

// NewEvaluator builds the Evaluator for one shot. shotIndex selects
// this shot's independent random stream (seed + shotIndex).
func NewEvaluator(classes map[string]*semantic.ClassInfo, functions map[string][]*semantic.FunctionInfo, sink *diagnostics.Sink, shotIndex int, opts ...Option) *Evaluator {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	globals := NewEnvironment()
	return &Evaluator{
		opts:          o,
		sink:          sink,
		classes:       classes,
		functions:     functions,
		heap:          NewHeap(),
		sim:           NewSimulator(rand.New(rand.NewSource(o.seed + int64(shotIndex)))),
		qasm:          newQASMLog(),
		globals:       globals,
		env:           globals,
		tracked:       make(map[string]string),
		trackedQubits: make(map[int]bool),
	}
}

// Stdout returns everything echo statements produced, if echoMode was
// enabled, per the "Echo/QASM side effects" design note: the evaluator
// owns a buffered writer the driver reads after Run returns.
func (e *Evaluator) Stdout() string { return e.stdout.String() }

// QASM returns the accumulated OpenQASM 2 trace for this shot.
func (e *Evaluator) QASM() string { return e.qasm.String() }

// Tracked returns this shot's final snapshot of @tracked outcomes, one
// entry per tracked name, for the shot loop to fold into its aggregate.
func (e *Evaluator) Tracked() map[string]string { return e.tracked }

func (e *Evaluator) rtErr(node ast.Node, format string, args ...any) *errors.CompilerError {
	return errors.New(errors.Runtime, node.Pos(), format, args...)
}

func (e *Evaluator) currentThis() *Object {
	if len(e.thisStack) == 0 {
		return nil
	}
	return e.thisStack[len(e.thisStack)-1]
}

func (e *Evaluator) pushThis(o *Object) { e.thisStack = append(e.thisStack, o) }
func (e *Evaluator) popThis()           { e.thisStack = e.thisStack[:len(e.thisStack)-1] }

// pushScope/popScope bracket a lexical block, snapshotting @tracked
// locals into e.tracked before discarding the scope.
func (e *Evaluator) pushScope() *Environment {
	e.env = NewEnclosedEnvironment(e.env)
	return e.env
}

func (e *Evaluator) popScope() {
	for name, val := range e.env.trackedLocals() {
		e.tracked[name] = e.trackedOutcome(val)
	}
	e.env = e.env.outer
}

// trackedOutcome renders a tracked qubit or qubit[] value into the
// outcome string the shot loop aggregates: "0"/"1" for a single
// measured qubit, "?" if never measured, or the concatenated bitstring
// for an array where every element was measured, else "?".
func (e *Evaluator) trackedOutcome(v Value) string {
	switch val := v.(type) {
	case QubitValue:
		e.trackedQubits[val.Index] = true
		if !e.sim.IsMeasured(val.Index) {
			return "?"
		}
		return strconv.Itoa(int(e.sim.lastOutcome(val.Index)))
	case ArrayValue:
		var sb strings.Builder
		allMeasured := true
		for _, el := range *val.Elems {
			q, ok := el.(QubitValue)
			if !ok {
				continue
			}
			e.trackedQubits[q.Index] = true
			if !e.sim.IsMeasured(q.Index) {
				allMeasured = false
				continue
			}
			sb.WriteString(strconv.Itoa(int(e.sim.lastOutcome(q.Index))))
		}
		if !allMeasured {
			return "?"
		}
		return sb.String()
	default:
		return "?"
	}
}

// warnUnmeasuredQubits emits the informational end-of-run warning:
// any allocated qubit that was never measured and never passed through
// a @tracked variable is flagged, since its fate is otherwise silently
// discarded when the shot ends.
func (e *Evaluator) warnUnmeasuredQubits(at ast.Node) {
	if e.sink == nil || !e.opts.warnOnExit || !e.opts.shotIsLast {
		return
	}
	for q := 0; q < e.sim.NumQubits(); q++ {
		if e.sim.IsMeasured(q) || e.trackedQubits[q] {
			continue
		}
		e.sink.Warn(diagnostics.UnmeasuredQubit, at.Pos(), "qubit %d was never measured", q)
	}
}
