// Package metrics exposes Prometheus instrumentation for ledger activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitsmart"

// Recorder holds the application's collectors on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	expenses          *prometheus.CounterVec
	settlements       prometheus.Counter
	rejectedExpenses  *prometheus.CounterVec
	recomputeDuration prometheus.Histogram
	debtsAfter        prometheus.Histogram
	rpcRequests       *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		expenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "Expenses recorded, by split type.",
		}, []string{"split"}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Settlements recorded.",
		}),
		rejectedExpenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_rejected_total",
			Help:      "Expenses rejected before being recorded, by reason.",
		}, []string{"reason"}),
		recomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "debt_recompute_duration_seconds",
			Help:      "Time spent appending history and recomputing a group's debts.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		// Group names are user input, so they are never used as a label.
		debtsAfter: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "debts_after_recompute",
			Help:      "Number of simplified debts left in a group after a recompute.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.expenses,
		r.settlements,
		r.rejectedExpenses,
		r.recomputeDuration,
		r.debtsAfter,
		r.rpcRequests,
	)
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ExpenseRecorded counts a recorded expense.
func (r *Recorder) ExpenseRecorded(split string) {
	if r == nil {
		return
	}
	r.expenses.WithLabelValues(split).Inc()
}

// ExpenseRejected counts an expense that was not recorded.
func (r *Recorder) ExpenseRejected(reason string) {
	if r == nil {
		return
	}
	r.rejectedExpenses.WithLabelValues(reason).Inc()
}

// SettlementRecorded counts a recorded settlement.
func (r *Recorder) SettlementRecorded() {
	if r == nil {
		return
	}
	r.settlements.Inc()
}

// ObserveRecompute records how long a recompute took and the resulting debt count.
func (r *Recorder) ObserveRecompute(took time.Duration, debts int) {
	if r == nil {
		return
	}
	r.recomputeDuration.Observe(took.Seconds())
	r.debtsAfter.Observe(float64(debts))
}

// RPCHandled counts a handled RPC.
func (r *Recorder) RPCHandled(procedure, code string) {
	if r == nil {
		return
	}
	r.rpcRequests.WithLabelValues(procedure, code).Inc()
}
