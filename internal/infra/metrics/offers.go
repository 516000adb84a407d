package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_registrations_total",
			Help: "Registration attempts by outcome (ok/invalid_phone/duplicate/rate_limited/error).",
		},
		[]string{"outcome"},
	)

	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_verifications_total",
			Help: "Code verifications by resulting status.",
		},
		[]string{"status"},
	)

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_redemptions_total",
			Help: "Redemption attempts by outcome (ok/not_found/already_used/expired/error).",
		},
		[]string{"outcome"},
	)

	entriesPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offer_entries_purged_total",
			Help: "Entries removed by the retention purge worker.",
		},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	register(registrationsTotal, verificationsTotal, redemptionsTotal, entriesPurgedTotal, httpRequestDuration)
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRegistration(outcome string) {
	registrationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncVerification(status string) {
	verificationsTotal.WithLabelValues(norm(status)).Inc()
}

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddEntriesPurged(n int64) {
	entriesPurgedTotal.Add(float64(n))
}

func ObserveHTTPRequest(method, path string, status int, seconds float64) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(seconds)
}
