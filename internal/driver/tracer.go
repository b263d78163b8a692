package driver

import (
	"fmt"
	"io"
)

// Event describes one point in a driver session worth reporting to a
// Tracer: a solve call's outcome, or one step of irrefutable-facts
// discovery or model enumeration (spec §4.8). Kind is one of the
// Event* constants below.
type Event struct {
	Kind    string
	Detail  string
	Clauses int
}

const (
	EventSolve      = "solve"
	EventAssumption = "assumption"
	EventBlock      = "block"
)

// Tracer observes driver search events, following the teacher's Tracer
// interface (pkg/controller/registry/resolver/solver/tracer.go) adapted to
// a synchronous solve/assume/block session rather than a backtracking
// search, since the actual search lives opaquely inside sat.Solver.
type Tracer interface {
	Trace(e Event)
}

// DefaultTracer discards every event.
type DefaultTracer struct{}

func (DefaultTracer) Trace(Event) {}

// LoggingTracer writes one line per event to Writer.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(e Event) {
	fmt.Fprintf(t.Writer, "[%s] %s (clauses=%d)\n", e.Kind, e.Detail, e.Clauses)
}
