package ledger

import (
	"github.com/annchain/settler/core"
	"github.com/annchain/settler/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Stats are running counters of one ledger since it was opened.
type Stats struct {
	Admitted atomic.Uint64
	Rejected atomic.Uint64
	Applied  atomic.Uint64
	Cleared  atomic.Uint64
	Rounds   atomic.Uint64
}

type StatsSnapshot struct {
	Admitted uint64 `json:"admitted"`
	Rejected uint64 `json:"rejected"`
	Applied  uint64 `json:"applied"`
	Cleared  uint64 `json:"cleared"`
	Rounds   uint64 `json:"rounds"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Admitted: s.Admitted.Load(),
		Rejected: s.Rejected.Load(),
		Applied:  s.Applied.Load(),
		Cleared:  s.Cleared.Load(),
		Rounds:   s.Rounds.Load(),
	}
}

type metrics struct {
	scheduled *prometheus.CounterVec
	settled   *prometheus.CounterVec
	rounds    prometheus.Counter
	pending   prometheus.Gauge
	balance   *prometheus.GaugeVec
}

func newMetrics(name string) *metrics {
	labels := prometheus.Labels{"ledger": name}
	return &metrics{
		scheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "settler",
			Name:        "scheduled_transactions_total",
			Help:        "Transactions offered to the executor by admission outcome.",
			ConstLabels: labels,
		}, []string{"target", "kind", "outcome"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "settler",
			Name:        "settled_transactions_total",
			Help:        "Settled transactions by outcome (applied or cleared).",
			ConstLabels: labels,
		}, []string{"target", "kind", "outcome"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "settler",
			Name:        "settlement_rounds_total",
			Help:        "Committed settlement rounds.",
			ConstLabels: labels,
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "settler",
			Name:        "pending_transactions",
			Help:        "Transactions waiting for the next settlement.",
			ConstLabels: labels,
		}),
		balance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "settler",
			Name:        "committed_balance",
			Help:        "Committed balance and cursed amount per target.",
			ConstLabels: labels,
		}, []string{"target", "field"}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.scheduled, m.settled, m.rounds, m.pending, m.balance} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) observeState(state core.State) {
	for _, target := range []types.Target{types.TargetAddress, types.TargetObject} {
		b := state.Balance(target)
		m.balance.WithLabelValues(target.String(), "balance").Set(float64(b.Balance))
		m.balance.WithLabelValues(target.String(), "cursed").Set(float64(b.Cursed))
	}
}
