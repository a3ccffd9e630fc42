// Package metric exports join metrics to Prometheus.
//
// PrometheusCollector satisfies fuzzyjoin.MetricsCollector and keeps its
// collectors on a private registry, so several joiners in one process do not
// clash on the default registry:
//
//	pc := metric.NewPrometheusCollector("fuzzyjoin")
//	joiner, _ := fuzzyjoin.New(..., fuzzyjoin.WithMetricsCollector(pc))
//	...
//	_ = pc.WriteToTextfile("fuzzyjoin.prom")
package metric
