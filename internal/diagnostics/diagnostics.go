// Package diagnostics carries the non-fatal warnings channel:
// missing-measurement hints, --shots/@shots mismatches, and
// deprecated-flag notices. Unlike internal/errors' four fatal categories,
// these never abort a pipeline stage and never change exit status.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/bloch-lang/bloch/internal/token"
	"github.com/sirupsen/logrus"
)

// Kind is the closed set of warning kinds this implementation emits.
type Kind string

const (
	UnmeasuredQubit     Kind = "unmeasured-qubit"
	ShotsFlagOverridden Kind = "shots-flag-overridden"
	DeprecatedFlag      Kind = "deprecated-flag"
)

// Warning is a single non-fatal diagnostic.
type Warning struct {
	Kind    Kind
	Pos     token.Position
	Message string
}

// Sink collects warnings and can forward them to a structured logger.
type Sink struct {
	log      *logrus.Logger
	warnings []Warning
}

// NewSink creates a Sink that writes formatted warnings to w using logrus's
// text formatter, quoting disabled so messages stay readable on a
// terminal.
func NewSink(w io.Writer) *Sink {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return &Sink{log: log}
}

// Warn records a warning and logs it immediately.
func (s *Sink) Warn(kind Kind, pos token.Position, format string, args ...any) {
	w := Warning{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
	s.warnings = append(s.warnings, w)
	s.log.WithFields(logrus.Fields{
		"kind": string(kind),
		"line": pos.Line,
		"col":  pos.Column,
	}).Warn(w.Message)
}

// Warnings returns every warning recorded so far, in emission order.
func (s *Sink) Warnings() []Warning {
	return s.warnings
}
