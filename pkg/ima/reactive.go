package ima

import "github.com/ima-dev/ima/pkg/dom"

// Reactive registers a component-level node binding. fn is called now for
// the initial element, which is returned; on later ticks fn is called again
// and the mounted element is replaced in place when its markup changes.
//
// fn must return a non-nil element on the first call.
func (e *Engine) Reactive(fn func() *dom.Element) *dom.Element {
	el := fn()
	if el == nil {
		panic("ima: Reactive render function returned nil")
	}
	e.bindComponent(el, func() any { return fn() })
	return el
}
