package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/fuzzyjoin/blocking"
	"github.com/hupe1980/fuzzyjoin/engine"
)

// PrometheusCollector records join metrics as Prometheus collectors.
type PrometheusCollector struct {
	registry *prometheus.Registry

	joins         *prometheus.CounterVec
	joinDuration  prometheus.Histogram
	pairs         *prometheus.CounterVec
	indexDuration prometheus.Histogram
	indexNGrams   prometheus.Gauge
	indexPostings prometheus.Gauge
	maxBlock      prometheus.Gauge
	processed     prometheus.Gauge
}

// NewPrometheusCollector creates a collector whose metric names are prefixed
// with namespace.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Number of joins by result.",
		}, []string{"result"}),
		joinDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "join_duration_seconds",
			Help:      "Wall time of a join.",
			Buckets:   prometheus.DefBuckets,
		}),
		pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Candidate pairs by outcome.",
		}, []string{"outcome"}),
		indexDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_duration_seconds",
			Help:      "Time spent building the blocking index.",
			Buckets:   prometheus.DefBuckets,
		}),
		indexNGrams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_ngrams",
			Help:      "Distinct n-grams in the last blocking index.",
		}),
		indexPostings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_postings",
			Help:      "Postings in the last blocking index.",
		}),
		maxBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_max_block",
			Help:      "Size of the largest posting list in the last blocking index.",
		}),
		processed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processed_records",
			Help:      "Left records processed by the running join.",
		}),
	}

	pc.registry.MustRegister(
		pc.joins,
		pc.joinDuration,
		pc.pairs,
		pc.indexDuration,
		pc.indexNGrams,
		pc.indexPostings,
		pc.maxBlock,
		pc.processed,
	)

	return pc
}

// Registry returns the registry holding the collectors.
func (pc *PrometheusCollector) Registry() *prometheus.Registry { return pc.registry }

// RecordJoin records a finished join.
func (pc *PrometheusCollector) RecordJoin(stats engine.Stats, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	pc.joins.WithLabelValues(result).Inc()
	pc.joinDuration.Observe(duration.Seconds())

	pc.pairs.WithLabelValues("candidate").Add(float64(stats.Candidates))
	pc.pairs.WithLabelValues("excluded").Add(float64(stats.Excluded))
	pc.pairs.WithLabelValues("compared").Add(float64(stats.Comparisons))
	pc.pairs.WithLabelValues("matched").Add(float64(stats.Matches))
}

// RecordIndex records a built blocking index.
func (pc *PrometheusCollector) RecordIndex(stats blocking.Stats, duration time.Duration) {
	pc.indexDuration.Observe(duration.Seconds())
	pc.indexNGrams.Set(float64(stats.NGrams))
	pc.indexPostings.Set(float64(stats.Postings))
	pc.maxBlock.Set(float64(stats.MaxBlock))
}

// RecordProgress records scanning progress.
func (pc *PrometheusCollector) RecordProgress(processed, _ int) {
	pc.processed.Set(float64(processed))
}

// WriteToTextfile writes the metrics in the text exposition format, e.g. for
// the node_exporter textfile collector.
func (pc *PrometheusCollector) WriteToTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, pc.registry)
}

// Handler returns an HTTP handler serving the metrics.
func (pc *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(pc.registry, promhttp.HandlerOpts{})
}
