package ima

import (
	"fmt"
	"time"

	ierrors "github.com/ima-dev/ima/internal/errors"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/shape"
)

// Armed reports whether a frame callback is pending.
func (e *Engine) Armed() bool { return e.armed }

// arm requests a frame unless one is already pending or there is nothing to
// reconcile.
func (e *Engine) arm() {
	if e.armed || e.Size() == 0 {
		return
	}
	if e.frames == nil {
		e.frames = frame.Global()
	}
	e.armed = true
	e.frames.RequestFrame(e.onFrame)
}

// onFrame is the frame callback. The pending flag is cleared before any
// binding is evaluated.
func (e *Engine) onFrame(time.Time) {
	e.armed = false
	e.tick()
}

// Flush runs one reconciliation pass immediately. It does not disturb a
// pending frame. Calling Flush from inside an evaluator is a no-op.
func (e *Engine) Flush() {
	e.tick()
}

// tick runs one pass over attributes, text and nodes, records
// instrumentation and re-arms. A panic escaping an evaluator under Freeze
// skips everything after the pass, including re-arming.
func (e *Engine) tick() {
	if e.ticking {
		return
	}
	e.ticking = true
	defer func() { e.ticking = false }()
	if e.policy == Freeze {
		defer e.reportFreeze()
	}

	start := e.clock()
	var updated [3]int

	// Bindings registered during the pass wait for the next tick.
	nAttrs, nTexts, nNodes := len(e.attrs.evals), len(e.texts.evals), len(e.nodes.evals)
	for i := 0; i < nAttrs; i++ {
		if e.updateAttr(i) {
			updated[KindAttribute]++
		}
	}
	for i := 0; i < nTexts; i++ {
		if e.updateText(i) {
			updated[KindText]++
		}
	}
	for i := 0; i < nNodes; i++ {
		if e.updateNode(i) {
			updated[KindNode]++
		}
	}

	end := e.clock()
	e.record(updated, end.Sub(start), end)
	e.arm()
}

// reportFreeze logs a panic escaping the tick and lets it continue.
func (e *Engine) reportFreeze() {
	r := recover()
	if r == nil {
		return
	}
	e.logger.Error("scheduler stopped",
		"error", ierrors.New("E203").WithDetailf("%v", r),
		"bindings", e.Size())
	panic(r)
}

// evaluate runs fn under the engine's failure policy.
func (e *Engine) evaluate(kind Kind, id int, fn shape.Evaluator) (v any, ok bool) {
	if e.policy == Freeze {
		return fn(), true
	}
	defer func() {
		if r := recover(); r != nil {
			e.fail(kind, id, r)
			v, ok = nil, false
		}
	}()
	return fn(), true
}

// fail disables a binding after its evaluator panicked.
func (e *Engine) fail(kind Kind, id int, r any) {
	switch kind {
	case KindAttribute:
		e.attrs.failed[id] = true
	case KindText:
		e.texts.failed[id] = true
	case KindNode:
		e.nodes.failed[id] = true
	}
	e.stats.Failed++

	cause, isErr := r.(error)
	if !isErr {
		cause = fmt.Errorf("%v", r)
	}
	err := ierrors.New("E201").
		WithDetailf("%s binding %d panicked", kind, id).
		Wrap(cause)
	e.logger.Error("binding disabled",
		"kind", kind.String(),
		"id", id,
		"error", err)
}
