package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tasknest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tasknest",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Quota metrics
	quotaChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "quota",
			Name:      "checks_total",
			Help:      "Total number of quota checks by effective tier and outcome",
		},
		[]string{"tier", "allowed"},
	)

	usageRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "quota",
			Name:      "usage_recorded_total",
			Help:      "Total number of AI operations charged to a pool",
		},
		[]string{"tier", "pool"},
	)

	// Reset scheduler metrics
	dailyResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "scheduler",
			Name:      "daily_resets_total",
			Help:      "Total number of daily counter resets by trigger",
		},
		[]string{"trigger"},
	)

	resetFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "scheduler",
			Name:      "reset_failures_total",
			Help:      "Total number of daily resets that failed and were dropped",
		},
	)

	armedTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tasknest",
			Subsystem: "scheduler",
			Name:      "armed_timers",
			Help:      "Number of per-user reset timers currently armed",
		},
	)

	// Subscription metrics
	subscriptionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "subscription",
			Name:      "transitions_total",
			Help:      "Total number of subscription tier transitions",
		},
		[]string{"from", "to"},
	)

	frozenCreditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "subscription",
			Name:      "frozen_credits_total",
			Help:      "Total number of monthly credits frozen on pro downgrades",
		},
	)

	// Maintenance job metrics
	sweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tasknest",
			Subsystem: "worker",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of maintenance sweeps in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"sweep"},
	)

	sweepAffected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "worker",
			Name:      "sweep_affected_total",
			Help:      "Total number of accounts changed by maintenance sweeps",
		},
		[]string{"sweep"},
	)

	// Billing metrics
	paymentEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "billing",
			Name:      "payment_events_total",
			Help:      "Total number of payment webhook events by outcome",
		},
		[]string{"outcome"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tasknest",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			routePattern = rctx.RoutePattern()
		}
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordQuotaCheck records the outcome of a quota evaluation
func RecordQuotaCheck(tier string, allowed bool) {
	quotaChecksTotal.WithLabelValues(tier, strconv.FormatBool(allowed)).Inc()
}

// RecordUsage records an AI operation charged to a pool
func RecordUsage(tier, pool string) {
	usageRecordedTotal.WithLabelValues(tier, pool).Inc()
}

// RecordDailyReset records a daily counter reset by trigger: timer,
// recovery, sweep or lazy.
func RecordDailyReset(trigger string) {
	dailyResetsTotal.WithLabelValues(trigger).Inc()
}

// RecordResetFailure records a dropped reset cycle
func RecordResetFailure() {
	resetFailuresTotal.Inc()
}

// SetArmedTimers sets the gauge for armed reset timers
func SetArmedTimers(count int) {
	armedTimers.Set(float64(count))
}

// RecordSubscriptionTransition records a tier change
func RecordSubscriptionTransition(from, to string) {
	subscriptionTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordFrozenCredits records credits frozen on a pro downgrade
func RecordFrozenCredits(n int) {
	if n > 0 {
		frozenCreditsTotal.Add(float64(n))
	}
}

// RecordSweep records the duration and effect of a maintenance sweep
func RecordSweep(sweep string, affected int, duration time.Duration) {
	sweepDuration.WithLabelValues(sweep).Observe(duration.Seconds())
	sweepAffected.WithLabelValues(sweep).Add(float64(affected))
}

// RecordPaymentEvent records a processed payment webhook
func RecordPaymentEvent(outcome string) {
	paymentEventsTotal.WithLabelValues(outcome).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
