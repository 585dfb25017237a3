// Package metrics expone las métricas Prometheus del ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
)

var _ ports.LedgerMetrics = (*LedgerMetrics)(nil)

// LedgerMetrics colectores del ledger registrados en su propio registry.
type LedgerMetrics struct {
	registry        *prometheus.Registry
	settlements     *prometheus.CounterVec
	settleDuration  prometheus.Histogram
	allocationLines prometheus.Histogram
	conflictRetries prometheus.Counter
	lotsCreated     prometheus.Counter
	bagsReceived    prometheus.Counter
	lotsClosed      prometheus.Counter
}

// NewLedgerMetrics crea y registra los colectores junto con los de proceso y runtime.
func NewLedgerMetrics() *LedgerMetrics {
	m := &LedgerMetrics{
		registry: prometheus.NewRegistry(),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "settlements_total",
			Help:      "Liquidaciones de retiros por resultado.",
		}, []string{"outcome"}),
		settleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "settlement_duration_seconds",
			Help:      "Duración de la liquidación, incluidos reintentos.",
			Buckets:   prometheus.DefBuckets,
		}),
		allocationLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "allocation_lines",
			Help:      "Lotes tocados por retiro liquidado.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "conflict_retries_total",
			Help:      "Reintentos por conflicto de concurrencia.",
		}),
		lotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "lots_created_total",
			Help:      "Lotes ingresados.",
		}),
		bagsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "bags_received_total",
			Help:      "Bultos ingresados.",
		}),
		lotsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "lots_closed_total",
			Help:      "Lotes cerrados por agotamiento.",
		}),
	}
	m.registry.MustRegister(
		m.settlements, m.settleDuration, m.allocationLines, m.conflictRetries,
		m.lotsCreated, m.bagsReceived, m.lotsClosed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *LedgerMetrics) ObserveSettlement(outcome string, elapsed time.Duration, lines int) {
	m.settlements.WithLabelValues(outcome).Inc()
	m.settleDuration.Observe(elapsed.Seconds())
	if outcome == ports.OutcomeSettled {
		m.allocationLines.Observe(float64(lines))
	}
}

func (m *LedgerMetrics) IncConflictRetry() { m.conflictRetries.Inc() }

func (m *LedgerMetrics) IncLotsCreated(bags int64) {
	m.lotsCreated.Inc()
	m.bagsReceived.Add(float64(bags))
}

func (m *LedgerMetrics) IncLotsClosed(n int) { m.lotsClosed.Add(float64(n)) }

// Handler sirve el registry en formato de exposición Prometheus.
func (m *LedgerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
