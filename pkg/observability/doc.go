/*
Package observability turns controller lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks and combined with Chain:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
	ctrl := workflow.NewController(engine, id, workflow.WithLifecycleHooks(hooks))
*/
package observability
