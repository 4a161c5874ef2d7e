// Package metrics exports ima engine instrumentation to Prometheus.
//
// A Recorder is fed the engine's snapshot after every tick:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.Attach(engine, metrics.WithRegistry(reg))
//	http.Handle("/metrics", rec.Handler())
//
// Metrics collected (default namespace "ima"):
//   - ima_bindings: Gauge of registered bindings by kind
//   - ima_binding_updates_total: Counter of DOM patches by kind
//   - ima_ticks_total: Counter of completed ticks
//   - ima_tick_duration_seconds: Histogram of tick duration
//   - ima_failed_bindings: Gauge of bindings disabled after a panic
//   - ima_measuring: Gauge, 1 while a measurement span is open
//   - ima_settle_duration_seconds: Histogram of closed measurement spans
package metrics
