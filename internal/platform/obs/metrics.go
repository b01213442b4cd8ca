package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CircuitGenerationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circuits_generation_total",
		Help: "Circuit generation attempts by outcome",
	}, []string{"outcome"})
	MatrixRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circuits_matrix_requests_total",
		Help: "Distance matrix provider HTTP calls by outcome",
	}, []string{"outcome"})
	MatrixRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "circuits_matrix_request_duration_seconds",
		Help:    "Distance matrix provider HTTP call duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	MatrixCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circuits_matrix_cache_total",
		Help: "Distance matrix cache lookups by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(CircuitGenerationsTotal)
	prometheus.MustRegister(MatrixRequestsTotal)
	prometheus.MustRegister(MatrixRequestDuration)
	prometheus.MustRegister(MatrixCacheTotal)
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
