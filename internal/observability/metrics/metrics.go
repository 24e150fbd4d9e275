// Package metrics expone las métricas Prometheus del batch de comisiones.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

const metricPrefix = "receivables_"

const (
	resultValid    = "valid"
	resultRejected = "rejected"
)

// Asegura que Metrics implementa receivables.MetricsRecorder.
var _ receivables.MetricsRecorder = (*Metrics)(nil)

// Metrics agrupa los colectores de una ejecución, registrados en su propio registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal           *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	PaymentsProcessed   *prometheus.CounterVec
	UnmappedDocuments   prometheus.Counter
	SkippedPayments     prometheus.Counter
	CommissionAmount    *prometheus.CounterVec
	ReconciliationLines *prometheus.CounterVec
	LastSuccess         prometheus.Gauge
}

// New construye y registra las métricas.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total batch runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "run_duration_seconds",
			Help:    "Batch run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PaymentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payments_processed_total",
				Help: "Commission lines emitted by entry type",
			},
			[]string{"kind"},
		),
		UnmappedDocuments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "unmapped_documents_total",
			Help: "Financial documents that could not be mapped to a process",
		}),
		SkippedPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "skipped_payments_total",
			Help: "Mapped payments skipped for missing rate data",
		}),
		CommissionAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commission_amount_total",
				Help: "Commission amount by entry type",
			},
			[]string{"kind"},
		),
		ReconciliationLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconciliation_lines_total",
				Help: "Reconciliation lines by validation result",
			},
			[]string{"result"},
		),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.PaymentsProcessed,
		m.UnmappedDocuments,
		m.SkippedPayments,
		m.CommissionAmount,
		m.ReconciliationLines,
		m.LastSuccess,
	)
	return m
}

// Registry para tests y exportación.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRun registra el resultado de una ejecución. report puede ser nil si falló antes de crearse.
func (m *Metrics) ObserveRun(report *receivables.RunReport, duration time.Duration, err error) {
	m.RunDuration.Observe(duration.Seconds())
	if report == nil {
		m.RunsTotal.WithLabelValues(string(receivables.OutcomeFailed)).Inc()
		return
	}
	outcome := report.Outcome
	if err != nil {
		outcome = receivables.OutcomeFailed
	}
	m.RunsTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == receivables.OutcomeFailed {
		return
	}

	advance, regular := string(entity.EntryAdvance), string(entity.EntryRegular)
	m.PaymentsProcessed.WithLabelValues(advance).Add(float64(len(report.Advances)))
	m.PaymentsProcessed.WithLabelValues(regular).Add(float64(len(report.Regulars)))
	m.CommissionAmount.WithLabelValues(advance).Add(report.TotalCommission(entity.EntryAdvance).InexactFloat64())
	m.CommissionAmount.WithLabelValues(regular).Add(report.TotalCommission(entity.EntryRegular).InexactFloat64())
	m.UnmappedDocuments.Add(float64(len(report.Unmapped)))
	m.SkippedPayments.Add(float64(len(report.Skipped)))
	m.ReconciliationLines.WithLabelValues(resultValid).Add(float64(len(report.Reconciliations)))
	m.ReconciliationLines.WithLabelValues(resultRejected).Add(float64(len(report.RejectedLines)))
	m.LastSuccess.Set(float64(report.FinishedAt.Unix()))
}

// WriteToTextfile escribe las métricas en formato node-exporter textfile.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
