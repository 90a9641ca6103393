package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormgate",
			Name:      "http_requests_total",
			Help:      "Portal HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormgate",
			Name:      "upstream_requests_total",
			Help:      "Requests issued to the housing backend by resource and status class.",
		},
		[]string{"resource", "status"},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormgate",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result (hit/miss).",
		},
		[]string{"result"},
	)

	uploadRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormgate",
			Name:      "upload_rejections_total",
			Help:      "Rejected upload attachments by reason.",
		},
		[]string{"reason"},
	)

	sessionsRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dormgate",
			Name:      "sessions_revoked_total",
			Help:      "Sessions cleared after an upstream 401.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, upstreamRequests, cacheOps, uploadRejections, sessionsRevoked)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncUpstream increments the backend request counter.
// status is a class label such as "2xx", "4xx", "5xx" or "error".
func IncUpstream(resource, status string) {
	upstreamRequests.WithLabelValues(resource, status).Inc()
}

func IncCacheHit()  { cacheOps.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheOps.WithLabelValues("miss").Inc() }

// IncUploadRejection increments the rejection counter for a validation reason.
func IncUploadRejection(reason string) {
	uploadRejections.WithLabelValues(reason).Inc()
}

// IncSessionRevoked counts forced logouts triggered by the upstream API.
func IncSessionRevoked() {
	sessionsRevoked.Inc()
}
