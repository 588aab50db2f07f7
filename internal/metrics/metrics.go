package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_webhook_events_total",
			Help: "Billing events handled, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CommissionCredits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_commission_credits_total",
			Help: "Commission credits newly applied to balances",
		},
		[]string{"reason"},
	)

	CommissionAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_commission_amount_total",
			Help: "Commission paid, in major currency units",
		},
		[]string{"reason"},
	)

	IntegrityAlarms = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_integrity_alarms_total",
			Help: "Referral graph integrity alarms",
		},
		[]string{"kind", "source"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Middleware records request counts and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		ResponseTimeHistogram.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
