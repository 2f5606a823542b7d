package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogPagesTotal    prometheus.Counter
	FacilitiesDiscovered prometheus.Counter
	FetchesTotal         *prometheus.CounterVec
	FetchDuration        *prometheus.HistogramVec
)

func Init() {
	CatalogPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_pages_total",
			Help: "Total number of facility listing pages fetched.",
		},
	)

	FacilitiesDiscovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "facilities_discovered_total",
			Help: "Total number of newly discovered facilities merged into the catalog.",
		},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_fetches_total",
			Help: "Total number of per-facility availability fetch attempts.",
		},
		[]string{"status", "error_type"}, // status: success, failure
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "availability_fetch_duration_seconds",
			Help:    "Duration of per-facility availability requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"center"},
	)
}
