// Package dom is a small in-process document object model.
//
// It models the subset of the browser DOM the ima engine drives: elements
// with ordered attributes and event listeners, text nodes, comment nodes used
// as anchors, and a Document root that defines connectivity.
//
// # Ownership
//
// A node has at most one parent. AppendChild, InsertBefore and ReplaceWith
// move a node that is already attached somewhere else, the way the browser
// DOM does.
//
// # Connectivity
//
// IsConnected walks the parent chain on every call and reports whether it
// reaches a Document. Nothing is cached, so detaching a subtree is visible
// immediately.
//
// # Observation
//
// Document.Observe registers a callback that sees every mutation applied to
// nodes connected to that document:
//
//	doc := dom.NewDocument()
//	cancel := doc.Observe(func(m dom.Mutation) {
//	    log.Println(m.Kind, m.Name)
//	})
//	defer cancel()
package dom
