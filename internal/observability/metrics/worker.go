package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	batchTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchInFlight   prometheus.Gauge
	deliveriesTotal *prometheus.CounterVec
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payslip",
			Subsystem: "worker",
			Name:      "batch_dispatch_total",
			Help:      "Total dispatched batches by status.",
		},
		[]string{"service", "status"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payslip",
			Subsystem: "worker",
			Name:      "batch_dispatch_duration_seconds",
			Help:      "Batch dispatch duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "payslip",
			Subsystem: "worker",
			Name:      "batch_dispatch_in_flight",
			Help:      "Number of in-flight batch dispatches.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	deliveriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payslip",
			Subsystem: "worker",
			Name:      "deliveries_total",
			Help:      "Per-recipient delivery outcomes by status.",
		},
		[]string{"service", "status"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payslip",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between batch creation and dispatch start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(batchTotal, batchDuration, batchInFlight, deliveriesTotal, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		batchTotal:      batchTotal,
		batchDuration:   batchDuration,
		batchInFlight:   batchInFlight,
		deliveriesTotal: deliveriesTotal,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch(service string, duration time.Duration, err error) {
	m.batchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordDeliveries(service string, report domain.DispatchReport) {
	for _, outcome := range report.Outcomes {
		m.deliveriesTotal.WithLabelValues(service, string(outcome.Status)).Inc()
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
