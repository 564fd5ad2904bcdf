package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfeed_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusfeed_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	FeedRankDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusfeed_feed_rank_duration_seconds",
		Help:    "Time spent building and running the feed query",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	// Signaux d'intérêt remplacés par la catégorie sentinelle après une erreur de lecture.
	FeedSignalFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfeed_feed_signal_fallbacks_total",
		Help: "Interest signal lookups that fell back to the sentinel category after a store error",
	}, []string{"signal"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
