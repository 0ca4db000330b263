package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamestore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamestore_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamestore_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "success"},
	)
)

// routeLabel collapses a request path onto its route template so the path
// label stays bounded regardless of order ids and receipt filenames.
func routeLabel(path string) string {
	switch {
	case path == "/health" || path == "/metrics":
		return path
	case path == "/api/orders" || path == "/api/orders/":
		return "/api/orders"
	case strings.HasPrefix(path, "/api/orders/") && strings.HasSuffix(path, "/status"):
		return "/api/orders/{id}/status"
	case strings.HasPrefix(path, "/payment-receipt/"):
		return "/payment-receipt/{filename}"
	case path == "/api/vbucks-rate" || path == "/api/vbucks-rate/history":
		return path
	default:
		return "other"
	}
}

// Metrics records request counts and latencies for Prometheus.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routeLabel(r.URL.Path)
		status := strconv.Itoa(rw.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

// RecordOrderOperation counts an order operation outcome.
func RecordOrderOperation(operation string, success bool) {
	orderOperations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}
