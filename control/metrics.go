// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus implementation of api.ExecutorMetrics.

package control

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-exec/api"
)

// PrometheusMetrics exports executor telemetry as Prometheus collectors.
type PrometheusMetrics struct {
	scheduled *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	completed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	workers   *prometheus.GaugeVec
	queued    *prometheus.GaugeVec
}

var _ api.ExecutorMetrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the collectors and registers them with
// registry.
func NewPrometheusMetrics(namespace string, registry prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		scheduled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_scheduled_total",
				Help:      "Total number of tasks accepted by an executor",
			},
			[]string{"executor"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_rejected_total",
				Help:      "Total number of tasks invoked with a rejection status",
			},
			[]string{"executor", "reason"},
		),
		completed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_completed_total",
				Help:      "Total number of accepted tasks that finished running",
			},
			[]string{"executor", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Time spent running accepted tasks",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"executor"},
		),
		workers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_threads",
				Help:      "Live worker threads of an executor",
			},
			[]string{"executor"},
		),
		queued: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_depth",
				Help:      "Accepted tasks waiting for a worker",
			},
			[]string{"executor"},
		),
	}
	for _, c := range m.collectors() {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) TaskScheduled(executor string) {
	m.scheduled.WithLabelValues(executor).Inc()
}

func (m *PrometheusMetrics) TaskRejected(executor string, code api.ErrorCode) {
	m.rejected.WithLabelValues(executor, code.String()).Inc()
}

func (m *PrometheusMetrics) TaskCompleted(executor string, d time.Duration, panicked bool) {
	m.completed.WithLabelValues(executor, outcome(panicked)).Inc()
	m.duration.WithLabelValues(executor).Observe(d.Seconds())
}

func (m *PrometheusMetrics) WorkerThreads(executor string, n int) {
	m.workers.WithLabelValues(executor).Set(float64(n))
}

func (m *PrometheusMetrics) QueueDepth(executor string, n int) {
	m.queued.WithLabelValues(executor).Set(float64(n))
}

// Describe implements prometheus.Collector.
func (m *PrometheusMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *PrometheusMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

func (m *PrometheusMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.scheduled, m.rejected, m.completed, m.duration, m.workers, m.queued}
}

// Scheduled returns the accepted-task counter of executor.
func (m *PrometheusMetrics) Scheduled(executor string) prometheus.Counter {
	return m.scheduled.WithLabelValues(executor)
}

// Rejected returns the rejection counter of executor for code.
func (m *PrometheusMetrics) Rejected(executor string, code api.ErrorCode) prometheus.Counter {
	return m.rejected.WithLabelValues(executor, code.String())
}

// Completed returns the completion counter of executor.
func (m *PrometheusMetrics) Completed(executor string, panicked bool) prometheus.Counter {
	return m.completed.WithLabelValues(executor, outcome(panicked))
}

// Workers returns the worker-thread gauge of executor.
func (m *PrometheusMetrics) Workers(executor string) prometheus.Gauge {
	return m.workers.WithLabelValues(executor)
}

// Queued returns the queue-depth gauge of executor.
func (m *PrometheusMetrics) Queued(executor string) prometheus.Gauge {
	return m.queued.WithLabelValues(executor)
}

func outcome(panicked bool) string {
	if panicked {
		return "panic"
	}
	return "ok"
}
