// Package imatest provides helpers for testing code built on the ima
// engine.
//
// A Harness wires an engine to a fresh document and a manual frame driver,
// so tests decide exactly when ticks happen:
//
//	h := imatest.New(t)
//	count := 0
//	h.Mount(h.Engine.El("span", func() int { return count }))
//	count++
//	stats := h.Tick()
//	if stats.TextsUpdated != 1 {
//	    t.Fatal("expected one text update")
//	}
package imatest
