package relay

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	outcomeSent        = "sent"
	outcomeInvalid     = "invalid"
	outcomeBot         = "bot"
	outcomeRateLimited = "rate_limited"
	outcomeDisabled    = "disabled"
	outcomeFailed      = "failed"
)

// Metrics exposes counters and histograms for the relay.
type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	submissions  *prometheus.CounterVec
	failures     *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	sendDuration prometheus.Histogram
	gatherer     prometheus.Gatherer
}

// NewMetrics registers the relay collectors with reg. A nil reg uses a
// fresh registry so several servers can live in one process.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactrelay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contactrelay",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactrelay",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact submissions by topic and outcome.",
		}, []string{"topic", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactrelay",
			Subsystem: "mail",
			Name:      "delivery_failures_total",
			Help:      "Failed provider calls by diagnostic category.",
		}, []string{"provider", "category"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactrelay",
			Subsystem: "ratelimit",
			Name:      "rejections_total",
			Help:      "Requests rejected by a rate limiter.",
		}, []string{"limiter"}),
		sendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contactrelay",
			Subsystem: "mail",
			Name:      "send_duration_seconds",
			Help:      "Latency of provider calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.requests, m.latency, m.submissions, m.failures, m.rejections, m.sendDuration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) observeSubmission(topic, outcome string) {
	if m == nil {
		return
	}
	if topic == "" {
		topic = "unknown"
	}
	m.submissions.WithLabelValues(topic, outcome).Inc()
}

func (m *Metrics) observeFailure(provider, category string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(provider, category).Inc()
}

func (m *Metrics) observeRejection(limiter string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(limiter).Inc()
}

func (m *Metrics) observeSend(seconds float64) {
	if m == nil {
		return
	}
	m.sendDuration.Observe(seconds)
}
