// Package inspect serves a live view of a running ima engine over HTTP.
//
// Every engine access is funneled through a Runner, normally the frame.Loop
// that drives the engine, so handlers never touch the document from the
// HTTP goroutines.
//
// Routes:
//
//	GET  /                      serialized document
//	GET  /stats                 instrumentation snapshot as JSON
//	POST /dispatch/{id}/{event} dispatch a DOM event on the element with that id
//	GET  /ws                    snapshot stream, one message per tick that changed something
//	GET  /metrics               Prometheus exposition, when configured
package inspect
