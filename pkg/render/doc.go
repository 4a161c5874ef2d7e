// Package render serializes dom trees to HTML and implements static mode.
//
// OuterHTML produces the same markup a browser reports for an element's
// outerHTML. The ima engine compares these strings to decide whether a node
// binding changed.
//
// Static mode builds HTML strings directly from builder-style calls when no
// document is available:
//
//	t := render.StaticTags()
//	html := t["ul"](render.Props{"class": "list"},
//	    t["li"]("one"),
//	    t["li"]("two"),
//	)
//
// Static calls share the engine's argument-shape rules but never register
// bindings: function children are resolved once and inlined, listeners and
// function-valued properties are dropped.
package render
