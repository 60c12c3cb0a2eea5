package driver_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bloch-lang/bloch/internal/diagnostics"
	"github.com/bloch-lang/bloch/internal/driver"
	"github.com/bloch-lang/bloch/internal/interp"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string, shots int) (*interp.Result, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink(&bytes.Buffer{})
	cfg := driver.DefaultConfig()
	cfg.ShotsFlag = shots
	cfg.Seed = 1
	result, err := driver.Run(source, t.Name(), cfg, sink)
	require.Nil(t, err, "unexpected error: %v", err)
	return result, sink
}

// A Hadamard followed by a measurement splits roughly 50/50 across
// shots.
func TestHadamardSanity(t *testing.T) {
	src := `
		@shots(1024)
		function main() -> void {
			@tracked qubit q;
			h(q);
			measure q;
		}
	`
	result, _ := run(t, src, 0)
	counts := result.Tracked["q"]
	require.NotNil(t, counts)
	_, hasUnknown := counts["?"]
	assert.False(t, hasUnknown, "no shot should leave the measured qubit untracked")

	n0, n1 := counts["0"], counts["1"]
	assert.Equal(t, 1024, n0+n1)
	assert.InDelta(t, 512, n0, 102, "heads count should land near the 512 expectation")
	assert.InDelta(t, 512, n1, 102, "tails count should land near the 512 expectation")
}

// A Bell pair only ever measures "00" or "11".
func TestBellPair(t *testing.T) {
	src := `
		@shots(1024)
		function main() -> void {
			qubit q0;
			qubit q1;
			@tracked qubit[] pair = {q0, q1};
			h(q0);
			cx(q0, q1);
			measure q0;
			measure q1;
		}
	`
	result, _ := run(t, src, 0)
	counts := result.Tracked["pair"]
	require.NotNil(t, counts)
	assert.Zero(t, counts["01"])
	assert.Zero(t, counts["10"])
	assert.Equal(t, 1024, counts["00"]+counts["11"])
}

// Grover search over 4 items with marked item |11>. A single
// iteration is the well-known exact special case for a 2-qubit search
// space, so every shot lands on "11".
func TestGroverN4(t *testing.T) {
	src := `
		@shots(1024)
		function main() -> void {
			qubit q0;
			qubit q1;
			@tracked qubit[] found = {q0, q1};
			h(q0);
			h(q1);

			h(q1);
			cx(q0, q1);
			h(q1);

			h(q0);
			h(q1);
			x(q0);
			x(q1);
			h(q1);
			cx(q0, q1);
			h(q1);
			x(q0);
			x(q1);
			h(q0);
			h(q1);

			measure q0;
			measure q1;
		}
	`
	result, _ := run(t, src, 0)
	counts := result.Tracked["found"]
	require.NotNil(t, counts)
	assert.Equal(t, 1024, counts["11"])
}

// Division by zero aborts with a Runtime error citing the division's
// position.
func TestDivisionByZero(t *testing.T) {
	src := `function main() -> void { float x = 1 / 0; }`
	sink := diagnostics.NewSink(&bytes.Buffer{})
	_, err := driver.Run(src, "div.bloch", driver.DefaultConfig(), sink)
	require.NotNil(t, err)
	assert.Equal(t, "Runtime", err.Category.String())
	assert.Equal(t, 1, err.Pos.Line)
	assert.Equal(t, 39, err.Pos.Column)
}

// Division between two integers promotes to float, so the quotient
// keeps its fractional part and the result cannot be stored in an int
// without an explicit cast.
func TestIntegerDivisionPromotesToFloat(t *testing.T) {
	src := `function main() -> void { echo(3 / 2); }`
	result, _ := run(t, src, 0)
	assert.Equal(t, "1.5\n", result.Stdout)

	sink := diagnostics.NewSink(&bytes.Buffer{})
	_, err := driver.Run(`function main() -> void { int x = 3 / 2; }`, "intdiv.bloch", driver.DefaultConfig(), sink)
	require.NotNil(t, err)
	assert.Equal(t, "Semantic", err.Category.String())
}

// Applying a gate to an already-measured qubit is a Runtime error at
// the gate call.
func TestGateAfterMeasurement(t *testing.T) {
	src := `function main() -> void { qubit q; h(q); measure q; x(q); }`
	sink := diagnostics.NewSink(&bytes.Buffer{})
	_, err := driver.Run(src, "gate-after.bloch", driver.DefaultConfig(), sink)
	require.NotNil(t, err)
	assert.Equal(t, "Runtime", err.Category.String())
}

// Redeclaring a variable in the same scope fails semantic analysis at
// the second declaration's position.
func TestRedeclaredVariable(t *testing.T) {
	src := `function main() -> void { int a = 1; int a = 2; }`
	sink := diagnostics.NewSink(&bytes.Buffer{})
	_, err := driver.Run(src, "redecl.bloch", driver.DefaultConfig(), sink)
	require.NotNil(t, err)
	assert.Equal(t, "Semantic", err.Category.String())
	assert.Equal(t, 1, err.Pos.Line)
}

// A @tracked qubit never measured records "?" exactly once per shot.
func TestTrackedQubitNeverMeasured(t *testing.T) {
	src := `
		function main() -> void {
			@tracked qubit q;
		}
	`
	result, _ := run(t, src, 3)
	assert.Equal(t, map[string]int{"?": 3}, result.Tracked["q"])
}

// Invariant: a single-shot run with no tracked variables and no
// measurements produces a QASM trace with no measure directives.
func TestQASMNoMeasureWithoutMeasurement(t *testing.T) {
	src := `
		function main() -> void {
			qubit q;
			h(q);
		}
	`
	result, _ := run(t, src, 1)
	assert.False(t, strings.Contains(result.QASM, "measure"))
	snaps.MatchSnapshot(t, result.QASM)
}

// Unmeasured, untracked qubits are flagged at program end through the
// non-fatal warnings channel.
func TestUnmeasuredQubitWarning(t *testing.T) {
	src := `
		function main() -> void {
			qubit q;
			h(q);
		}
	`
	_, sink := run(t, src, 1)
	warnings := sink.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostics.UnmeasuredQubit, warnings[0].Kind)
}

// @shots(N) on main overrides a conflicting --shots flag and surfaces
// a non-fatal warning about the mismatch.
func TestShotsFlagOverriddenWarning(t *testing.T) {
	src := `
		@shots(4)
		function main() -> void {
			@tracked qubit q;
		}
	`
	result, sink := run(t, src, 8)
	total := 0
	for _, n := range result.Tracked["q"] {
		total += n
	}
	assert.Equal(t, 4, total)

	var found bool
	for _, w := range sink.Warnings() {
		if w.Kind == diagnostics.ShotsFlagOverridden {
			found = true
		}
	}
	assert.True(t, found, "expected a shots-flag-overridden warning")
}

func TestDefaultShotsIsOne(t *testing.T) {
	src := `function main() -> void { echo(1 + 2); }`
	result, _ := run(t, src, 0)
	assert.Equal(t, "3\n", result.Stdout)
}

// `0b`/`1b` are accepted bit literals, `2b` is not.
func TestBitLiteralBoundary(t *testing.T) {
	_, err := driver.Lex(`bit a = 0b; bit b = 1b;`)
	require.Nil(t, err)

	_, err = driver.Lex(`bit c = 2b;`)
	require.NotNil(t, err)
	assert.Equal(t, "Lexical", err.Category.String())
}

// Boundary behavior: a float literal missing its mandatory `f` suffix
// is rejected; with the suffix it is accepted.
func TestFloatLiteralSuffixBoundary(t *testing.T) {
	_, err := driver.Lex(`float x = 3.14f;`)
	require.Nil(t, err)

	_, err = driver.Lex(`float x = 3.14;`)
	require.NotNil(t, err)
	assert.Equal(t, "Lexical", err.Category.String())
}
