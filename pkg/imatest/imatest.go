package imatest

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/ima"
	"github.com/ima-dev/ima/pkg/render"
)

// Harness is an engine driven by manual frames.
type Harness struct {
	T      testing.TB
	Doc    *dom.Document
	Frames *frame.Manual
	Engine *ima.Engine

	// Logs captures everything the engine logs.
	Logs *bytes.Buffer
}

// New creates a harness. Options are applied after the harness defaults, so
// they can override the document, frames or logger.
func New(t testing.TB, opts ...ima.Option) *Harness {
	t.Helper()
	logs := &bytes.Buffer{}
	h := &Harness{
		T:      t,
		Doc:    dom.NewDocument(),
		Frames: frame.NewManual(0),
		Logs:   logs,
	}
	base := []ima.Option{
		ima.WithDocument(h.Doc),
		ima.WithFrames(h.Frames),
		ima.WithLogger(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	}
	h.Engine = ima.New(append(base, opts...)...)
	return h
}

// Mount appends nodes to the document body.
func (h *Harness) Mount(nodes ...dom.Node) {
	h.Engine.Mount(nodes...)
}

// Tick steps one frame and returns the snapshot after it. A panic escaping
// the frame fails the test.
func (h *Harness) Tick() ima.Stats {
	h.T.Helper()
	if err := h.Frames.Step(); err != nil {
		h.T.Fatalf("tick: %v", err)
	}
	return h.Engine.Debug()
}

// TickErr steps one frame and returns any panic escaping it.
func (h *Harness) TickErr() error {
	return h.Frames.Step()
}

// Settle ticks until a tick mutates nothing and returns the number of ticks
// it took. It fails the test after max ticks.
func (h *Harness) Settle(max int) int {
	h.T.Helper()
	for i := 1; i <= max; i++ {
		if !h.Frames.Pending() {
			h.T.Fatalf("settle: no frame pending after %d ticks", i-1)
		}
		if h.Tick().Updated() == 0 {
			return i
		}
	}
	h.T.Fatalf("settle: still updating after %d ticks", max)
	return max
}

// ByID returns the connected element with the given id or fails the test.
func (h *Harness) ByID(id string) *dom.Element {
	h.T.Helper()
	el := h.Doc.GetElementByID(id)
	if el == nil {
		h.T.Fatalf("no element with id %q", id)
	}
	return el
}

// Click dispatches a click on the element with the given id.
func (h *Harness) Click(id string) {
	h.T.Helper()
	h.ByID(id).Click()
}

// HTML returns the serialized body content.
func (h *Harness) HTML() string {
	return render.InnerHTML(h.Doc.Body())
}

// ExpectContains asserts that the body markup contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.T.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.T.Errorf("expected markup to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the body markup does not contain unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.T.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.T.Errorf("expected markup to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts that el has the attribute with the given value.
func ExpectAttribute(t testing.TB, el *dom.Element, name, value string) {
	t.Helper()
	got, ok := el.GetAttribute(name)
	if !ok {
		t.Errorf("expected attribute %s=%q, attribute missing in %s", name, value, truncate(render.OuterHTML(el), 200))
		return
	}
	if got != value {
		t.Errorf("attribute %s = %q, want %q", name, got, value)
	}
}

// ExpectNoAttribute asserts that el lacks the attribute.
func ExpectNoAttribute(t testing.TB, el *dom.Element, name string) {
	t.Helper()
	if v, ok := el.GetAttribute(name); ok {
		t.Errorf("expected no attribute %s, got %q", name, v)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
