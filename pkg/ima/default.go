package ima

import (
	"context"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/frame"
)

// The helpers below drive the default engine from any goroutine: each call
// runs on frame.Global() and waits for it. They must not be called from
// inside the loop, where they would wait on themselves; listeners and
// evaluators use Default() directly.

// Do runs fn with the default engine on the global loop and waits for it.
// A panic in fn is re-raised on the caller's goroutine.
func Do(fn func(e *Engine)) {
	var (
		recovered any
		panicked  bool
	)
	err := frame.Global().Do(context.Background(), func() {
		panicked = true
		defer func() {
			if panicked {
				recovered = recover()
			}
		}()
		fn(Default())
		panicked = false
	})
	if err != nil {
		panic("ima: default engine unavailable: " + err.Error())
	}
	if panicked {
		panic(recovered)
	}
}

// El builds an element with the default engine.
func El(tag string, args ...any) *dom.Element {
	var el *dom.Element
	Do(func(e *Engine) { el = e.El(tag, args...) })
	return el
}

// Tag returns a constructor bound to the default engine.
func Tag(name string) TagFunc {
	return func(args ...any) *dom.Element { return El(name, args...) }
}

// Mount appends nodes to the default engine's document body.
func Mount(nodes ...dom.Node) {
	Do(func(e *Engine) { e.Mount(nodes...) })
}

// Debug returns the default engine's instrumentation snapshot.
func Debug() Stats {
	var s Stats
	Do(func(e *Engine) { s = e.Debug() })
	return s
}

// StartMeasurement opens a measurement span on the default engine.
func StartMeasurement() { Do(func(e *Engine) { e.StartMeasurement() }) }

// EndMeasurement closes the default engine's measurement span.
func EndMeasurement() { Do(func(e *Engine) { e.EndMeasurement() }) }
