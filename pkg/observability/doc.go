/*
Package observability turns session hooks into Prometheus metrics and
structured log lines.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Hooks(metrics, logger)
	s, err := session.Start(ctx, cfg, session.WithHooks(hooks))
*/
package observability
