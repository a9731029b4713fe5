package queue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus instruments. All methods are safe
// on a nil receiver so the pipeline works without a registry.
type Metrics struct {
	enqueued      prometheus.Counter
	succeeded     prometheus.Counter
	failed        prometheus.Counter
	pending       prometheus.Gauge
	agentInFlight prometheus.Gauge
	jobDuration   prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoflow_jobs_enqueued_total",
			Help: "Total number of memo jobs accepted by the queue.",
		}),
		succeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoflow_jobs_succeeded_total",
			Help: "Total number of memo jobs that completed successfully.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoflow_jobs_failed_total",
			Help: "Total number of memo jobs that terminated in failure.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memoflow_jobs_pending",
			Help: "Number of memo jobs waiting in the queue.",
		}),
		agentInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memoflow_agent_in_flight",
			Help: "Number of classifier calls currently in flight. Never exceeds 1.",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memoflow_job_duration_seconds",
			Help:    "End-to-end processing time per memo job.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	reg.MustRegister(m.enqueued, m.succeeded, m.failed, m.pending, m.agentInFlight, m.jobDuration)
	return m
}

func (m *Metrics) jobEnqueued() {
	if m == nil {
		return
	}
	m.enqueued.Inc()
	m.pending.Inc()
}

func (m *Metrics) jobDequeued() {
	if m == nil {
		return
	}
	m.pending.Dec()
}

func (m *Metrics) agentCallStarted() {
	if m == nil {
		return
	}
	m.agentInFlight.Inc()
}

func (m *Metrics) agentCallFinished() {
	if m == nil {
		return
	}
	m.agentInFlight.Dec()
}

func (m *Metrics) jobCompleted(status JobStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	switch status {
	case JobStatusSucceeded:
		m.succeeded.Inc()
	case JobStatusFailed:
		m.failed.Inc()
	}
	m.jobDuration.Observe(elapsed.Seconds())
}
