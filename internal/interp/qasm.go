package interp

import (
	"fmt"
	"strings"
)

// qasmLog accumulates an OpenQASM 2 trace lazily as the evaluator
// applies gates and measurements. The qubit register is sized to the
// running high-water mark once the program finishes, not per gate,
// since a qubit's index is only known to be final at that point.
type qasmLog struct {
	maxQubit  int // highest qubit index any emitted line references, -1 if none
	classRegs int // count of measure directives, one classical bit each
	lines     []string
}

func newQASMLog() *qasmLog {
	return &qasmLog{maxQubit: -1}
}

func (q *qasmLog) noteQubit(index int) {
	if index > q.maxQubit {
		q.maxQubit = index
	}
}

func (q *qasmLog) gate1(name string, qubit int) {
	q.noteQubit(qubit)
	q.lines = append(q.lines, fmt.Sprintf("%s q[%d];", name, qubit))
}

func (q *qasmLog) gateParam(name string, theta float64, qubit int) {
	q.noteQubit(qubit)
	q.lines = append(q.lines, fmt.Sprintf("%s(%v) q[%d];", name, theta, qubit))
}

func (q *qasmLog) gateCx(control, target int) {
	q.noteQubit(control)
	q.noteQubit(target)
	q.lines = append(q.lines, fmt.Sprintf("cx q[%d],q[%d];", control, target))
}

func (q *qasmLog) measure(qubit int) {
	q.noteQubit(qubit)
	creg := q.classRegs
	q.classRegs++
	q.lines = append(q.lines, fmt.Sprintf("measure q[%d] -> c[%d];", qubit, creg))
}

// String renders the full trace: a fixed preamble, a qubit register
// declaration sized to the high-water mark, a classical register sized
// to the number of measurements taken, and one line per applied gate in
// emission order.
func (q *qasmLog) String() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")

	nQubits := q.maxQubit + 1
	if nQubits < 0 {
		nQubits = 0
	}
	fmt.Fprintf(&sb, "qreg q[%d];\n", nQubits)
	if q.classRegs > 0 {
		fmt.Fprintf(&sb, "creg c[%d];\n", q.classRegs)
	}
	for _, line := range q.lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
