package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpDurationHistogram   *prometheus.HistogramVec
	providerCallCounter     *prometheus.CounterVec
	providerDurationSeconds *prometheus.HistogramVec
	payoutItemsCounter      *prometheus.CounterVec
	degradedPayoutCounter   prometheus.Counter
	validationFailedCounter *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		providerCallCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paypal_calls_total",
			Help: "Calls made to the PayPal REST API by operation and outcome",
		}, []string{"operation", "outcome"})

		providerDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paypal_call_duration_seconds",
			Help:    "PayPal REST API latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"})

		payoutItemsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_items_submitted_total",
			Help: "Payout line items accepted by the provider",
		}, []string{"currency"})

		degradedPayoutCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payout_batches_without_id_total",
			Help: "Batches the provider accepted without returning a recognizable batch id",
		})

		validationFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_validation_failures_total",
			Help: "Requests rejected before any provider call",
		}, []string{"field"})

		prometheus.MustRegister(
			httpDurationHistogram,
			providerCallCounter,
			providerDurationSeconds,
			payoutItemsCounter,
			degradedPayoutCounter,
			validationFailedCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveProviderCall records one remote call. Outcome is "ok", "http_<code>" or "transport_error".
func ObserveProviderCall(operation, outcome string, duration time.Duration) {
	if providerCallCounter == nil {
		return
	}
	providerCallCounter.WithLabelValues(operation, outcome).Inc()
	providerDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

func AddPayoutItems(currency string, n int) {
	if payoutItemsCounter == nil {
		return
	}
	payoutItemsCounter.WithLabelValues(currency).Add(float64(n))
}

func IncrementDegradedPayout() {
	if degradedPayoutCounter == nil {
		return
	}
	degradedPayoutCounter.Inc()
}

func IncrementValidationFailure(field string) {
	if validationFailedCounter == nil {
		return
	}
	validationFailedCounter.WithLabelValues(field).Inc()
}
