// metrics.go — Prometheus HTTP метрики Document Intake.
// Регистрирует метрики: di_http_requests_total, di_http_request_duration_seconds.
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
			Name: "di_http_requests_total",
			Help: "Общее количество HTTP-запросов к Document Intake",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "di_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Document Intake в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			route := routeOf(r)
			status := strconv.Itoa(wrapped.status)
			httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath заменяет идентификатор субъекта в пути на {nss}.
// /files/12345678901 → /files/{nss}
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	switch path {
	case "/upload", "/upload-signature", "/tokens", "/signed-document",
		"/health/live", "/health/ready", "/metrics", "/openapi.yaml":
		return path
	}

	for _, prefix := range []string{"/check-signature/", "/files/"} {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + "{nss}"
		}
	}
	return "other"
}
