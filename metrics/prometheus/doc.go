// Package prometheus exports tensgo pool and dispatch events as Prometheus
// metrics.
//
//	reg := prometheus.NewRegistry()
//	c, err := tgprom.NewCollector(reg)
//	rt := tensgo.New(tensgo.WithMetricsCollector(c))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus
