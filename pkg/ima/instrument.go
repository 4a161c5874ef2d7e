package ima

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Stats is an instrumentation snapshot. Totals and per-tick counts are
// updated at the end of every tick.
type Stats struct {
	// Binding totals per kind.
	Attributes int `json:"attributes"`
	Texts      int `json:"texts"`
	Nodes      int `json:"nodes"`

	// Bindings mutated during the last tick, per kind.
	AttributesUpdated int `json:"attributesUpdated"`
	TextsUpdated      int `json:"textsUpdated"`
	NodesUpdated      int `json:"nodesUpdated"`

	// Failed is the number of bindings disabled after a panic.
	Failed int `json:"failed"`

	// Ticks is the number of completed ticks.
	Ticks uint64 `json:"ticks"`

	// FrameDuration is the wall-clock duration of the last tick.
	FrameDuration time.Duration `json:"frameDuration"`

	// Measuring is true while a measurement span is open.
	Measuring bool `json:"measuring"`

	// MeasuredDuration is the length of the last closed measurement span.
	// It is reset to zero when a new span starts.
	MeasuredDuration time.Duration `json:"measuredDuration"`

	// Measurements is the number of measurement spans closed so far.
	Measurements uint64 `json:"measurements"`
}

// Total returns the number of bindings.
func (s Stats) Total() int { return s.Attributes + s.Texts + s.Nodes }

// Updated returns the number of bindings mutated during the last tick.
func (s Stats) Updated() int { return s.AttributesUpdated + s.TextsUpdated + s.NodesUpdated }

// measurement is an open span from an input to the first quiet tick.
type measurement struct {
	active  bool
	start   time.Time
	ticks   int
	updates int
	span    trace.Span
}

// Debug returns the current instrumentation snapshot.
func (e *Engine) Debug() Stats { return e.stats }

// StartMeasurement opens a measurement span. The engine closes it at the
// first tick that mutates nothing. Starting a span while one is open
// restarts it.
func (e *Engine) StartMeasurement() {
	now := e.clock()
	if e.measure.span != nil {
		e.measure.span.End(trace.WithTimestamp(now))
	}
	_, span := e.tracer.Start(context.Background(), "ima.measurement",
		trace.WithTimestamp(now),
		trace.WithAttributes(attribute.Int("ima.bindings", e.Size())),
	)
	e.measure = measurement{active: true, start: now, span: span}
	e.stats.Measuring = true
	e.stats.MeasuredDuration = 0
}

// EndMeasurement closes the open measurement span, if any.
func (e *Engine) EndMeasurement() {
	e.endMeasurement(e.clock())
}

func (e *Engine) endMeasurement(end time.Time) {
	m := e.measure
	if !m.active {
		return
	}
	total := end.Sub(m.start)
	e.stats.MeasuredDuration = total
	e.stats.Measuring = false
	e.stats.Measurements++
	e.measure = measurement{}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.Int("ima.ticks", m.ticks),
			attribute.Int("ima.updates", m.updates),
		)
		m.span.End(trace.WithTimestamp(end))
	}
	e.logger.Info("render settled",
		"duration", total,
		"ticks", m.ticks,
		"updates", m.updates)
}

// record stores the result of a tick.
func (e *Engine) record(updated [3]int, elapsed time.Duration, end time.Time) {
	s := &e.stats
	s.Attributes = len(e.attrs.evals)
	s.Texts = len(e.texts.evals)
	s.Nodes = len(e.nodes.evals)
	s.AttributesUpdated = updated[KindAttribute]
	s.TextsUpdated = updated[KindText]
	s.NodesUpdated = updated[KindNode]
	s.FrameDuration = elapsed
	s.Ticks++

	total := updated[0] + updated[1] + updated[2]
	if e.measure.active {
		e.measure.ticks++
		e.measure.updates += total
		if total == 0 {
			e.endMeasurement(end)
		}
	}

	snapshot := *s
	for _, fn := range e.observers {
		fn(snapshot)
	}
}
