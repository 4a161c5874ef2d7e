// Package ima is a small immediate-mode inspired rendering engine.
//
// Trees are built once with declarative element builders. Any property or
// child given as a function becomes a binding: the engine evaluates it every
// frame, compares the result with the value it saw last, and patches only
// the attribute, text or node that changed. There is no virtual DOM; the
// engine keeps a flat registry of bindings and polls all of them each tick.
//
// # Building
//
//	e := ima.New(ima.WithFrames(frame.NewManual(0)))
//	t := e.Tags()
//	count := 0
//
//	app := t["main"](
//	    t["h1"](shape.Props{"class": func() string { return fmt.Sprint("n", count) }}, "Counter"),
//	    t["span"](func() int { return count }),
//	    t["button"](shape.Props{"onclick": func() { count++ }}, "Add"),
//	)
//	doc.Body().AppendChild(app)
//
// # Bindings
//
// A function-valued property becomes an attribute binding. A function child
// becomes a node binding anchored by a comment placed right after the mounted
// node. When the function is the only child and its result type can never be
// a node, a cheaper text binding replaces the element's text content instead.
//
// Bindings are never removed. A binding whose owner is not connected to a
// document is skipped without being evaluated, and resumes when the owner is
// connected again.
//
// # Scheduling
//
// Registering the first binding arms the scheduler: it requests a frame, runs
// one pass over every binding when the frame fires, and requests the next
// frame as long as the registry is non-empty.
//
// # Failures
//
// Under the default Isolate policy a panicking evaluator disables only its own
// binding. Under Freeze the panic escapes the tick before the next frame is
// requested, so the scheduler stops.
package ima
