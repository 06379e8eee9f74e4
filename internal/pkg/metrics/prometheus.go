package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Recorder backed by Prometheus.
// Collectors are created and registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	decisions   *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	dayLocks    *prometheus.CounterVec
	crewShifts  prometheus.Counter
	latency     *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed recorder. A nil registerer means
// prometheus.DefaultRegisterer; an empty namespace means "labor_roster".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "labor_roster"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "decisions_total",
			Help:      "Assignment write outcomes by result (accepted or conflict reason).",
		}, []string{"outcome"})

		p.suggestions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "autopopulate",
			Name:      "suggestions_total",
			Help:      "Suggestions produced by auto-populate by environment.",
		}, []string{"environment"})

		p.dayLocks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "daylock",
			Name:      "lock_calls_total",
			Help:      "Day lock calls by environment and whether a new lock was created.",
		}, []string{"environment", "created"})

		p.crewShifts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "crew",
			Name:      "shifts_generated_total",
			Help:      "Crew shifts written by schedule generation.",
		})

		p.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency of roster service operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}, []string{"op"})

		p.reg.MustRegister(p.decisions, p.suggestions, p.dayLocks, p.crewShifts, p.latency)
	})
}

func (p *PrometheusCollector) RecordDecision(outcome string) {
	p.ensureRegistered()
	p.decisions.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) RecordSuggestions(environment string, count int) {
	p.ensureRegistered()
	p.suggestions.WithLabelValues(environment).Add(float64(count))
}

func (p *PrometheusCollector) RecordDayLock(environment string, created bool) {
	p.ensureRegistered()
	p.dayLocks.WithLabelValues(environment, strconv.FormatBool(created)).Inc()
}

func (p *PrometheusCollector) RecordCrewShifts(count int) {
	p.ensureRegistered()
	p.crewShifts.Add(float64(count))
}

func (p *PrometheusCollector) ObserveOperation(op string, seconds float64) {
	p.ensureRegistered()
	p.latency.WithLabelValues(op).Observe(seconds)
}
