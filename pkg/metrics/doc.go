/*
Package metrics provides Prometheus metrics and health endpoints for fxboard.

All collectors are package-level variables registered with the default
Prometheus registry at init, so any package can increment them without
plumbing a registry through constructors.

# Metric Catalog

Dispatcher:

  - fxboard_publishes_total{topic}
  - fxboard_subscribers{topic}
  - fxboard_callback_failures_total{topic}

Unit handler:

  - fxboard_engine_messages_total
  - fxboard_fragments_total{fragment,result}   result is merged or ignored
  - fxboard_merge_duration_seconds

Engine link:

  - fxboard_commands_total{param,result}       result is sent or error
  - fxboard_engine_connected

Board store:

  - fxboard_store_operations_total{operation,result}
  - fxboard_stored_boards

# Health

The health registry tracks named components. "engine" and "store" are
critical: /ready answers 503 until both are registered and healthy. The
Collector samples a Source (the unit handler) on an interval, updates the
subscriber gauges and marks the engine unhealthy when the event channel is
closed or has been silent for longer than the stale threshold.

	mux := metrics.NewServeMux() // /metrics /health /ready /live
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

# Timing

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.MergeDuration)
*/
package metrics
