package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendations HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommender_recommend_latency_seconds",
		Help:    "Latency of the recommendations handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of recommendation requests served
	RecommendRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommender_recommend_requests_total",
		Help: "Total number of recommendation requests",
	})

	// Duration of full index rebuilds
	RebuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommender_rebuild_duration_seconds",
		Help:    "Duration of full recommendation index rebuilds",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	})

	// Rebuild outcomes by result: success, partial, failed
	RebuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_rebuilds_total",
		Help: "Total number of index rebuilds by outcome",
	}, []string{"result"})

	// Number of products in the currently published index
	IndexedProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recommender_indexed_products",
		Help: "Number of products in the published recommendation index",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		RebuildDuration,
		RebuildsTotal,
		IndexedProducts,
	)
}
