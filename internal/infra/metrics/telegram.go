package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		telegramCallsTotal,
		telegramCallDuration,
		limiterWaitSeconds,
	)
}

var (
	telegramCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_calls_total",
			Help: "Bot API calls by method and result.",
		},
		[]string{"method", "result"}, // result: ok|rejected|error
	)

	telegramCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_api_call_duration_seconds",
			Help:    "Bot API call latency in seconds, limiter wait excluded.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method"},
	)

	// Time spent queued in the global outbound limiter.
	limiterWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outbound_limiter_wait_seconds",
			Help:    "Time callers waited for the global outbound rate limiter.",
			Buckets: []float64{0, 0.01, 0.033, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
)

func ObserveTelegramCall(method, result string, d time.Duration) {
	telegramCallsTotal.WithLabelValues(norm(method), norm(result)).Inc()
	telegramCallDuration.WithLabelValues(norm(method)).Observe(d.Seconds())
}

func ObserveLimiterWait(d time.Duration) {
	limiterWaitSeconds.Observe(d.Seconds())
}
