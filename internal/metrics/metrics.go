package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NearestRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geopoints_nearest_requests_total",
		Help: "Total nearest-geopoints queries by outcome (ok or error kind)",
	}, []string{"outcome"})
	NearestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geopoints_nearest_duration_ms",
		Help:    "Nearest-geopoints query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	PointsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geopoints_points_loaded",
		Help: "Number of geopoints in the in-memory point set",
	})
	PointCacheState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geopoints_point_cache_state",
		Help: "Point cache lifecycle state (0 uninitialized, 1 loaded, 2 load_failed)",
	})
)

func init() {
	prometheus.MustRegister(NearestRequestsTotal)
	prometheus.MustRegister(NearestDurationMs)
	prometheus.MustRegister(PointsLoaded)
	prometheus.MustRegister(PointCacheState)
}

// Handler exposes the registered metrics for Prometheus scraping
func Handler() http.Handler { return promhttp.Handler() }
