// Package metrics exports governance activity as prometheus metrics.
package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

const namespace = "trebgov"

// Recorder counts published events and tracks the state of the system.
// It is a governance.Subscriber.
type Recorder struct {
	mu      sync.Mutex
	lastSeq uint64

	events     *prometheus.CounterVec
	votes      *prometheus.CounterVec
	proposals  *prometheus.GaugeVec
	pendingOps prometheus.Gauge
	ordinal    prometheus.Gauge
	timestamp  prometheus.Gauge
	boxValue   prometheus.Gauge
}

// NewRecorder registers the governance metrics with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "number of governance events observed, by event name",
		}, []string{"event"}),
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "number of votes cast, by support",
		}, []string{"support"}),
		proposals: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proposals",
			Help:      "number of proposals in each state",
		}, []string{"state"}),
		pendingOps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timelock_pending_operations",
			Help:      "number of scheduled timelock operations not yet executed or cancelled",
		}),
		ordinal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_ordinal",
			Help:      "current clock ordinal (block number or timestamp)",
		}),
		timestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_timestamp_seconds",
			Help:      "current clock timestamp",
		}),
		boxValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "box_value",
			Help:      "value held by the governed box",
		}),
	}
}

// Publish counts events. Events at or below the last seen sequence are skipped.
func (r *Recorder) Publish(_ context.Context, events []domain.EventEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, env := range events {
		if env.Seq != 0 && env.Seq <= r.lastSeq {
			continue
		}
		r.lastSeq = max(r.lastSeq, env.Seq)
		r.events.WithLabelValues(env.Event.ContractEventName()).Inc()
		if vote, ok := env.Event.(*domain.VoteCastEvent); ok {
			r.votes.WithLabelValues(vote.Support.String()).Inc()
		}
	}
	return nil
}

// LastSeq is the highest event sequence counted so far
func (r *Recorder) LastSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSeq
}

// Observe refreshes the gauges from the current system
func (r *Recorder) Observe(sys *governance.System) {
	counts := make(map[models.ProposalState]int, len(models.AllProposalStates))
	for _, p := range sys.Proposals() {
		counts[p.State]++
	}
	for _, state := range models.AllProposalStates {
		r.proposals.WithLabelValues(string(state)).Set(float64(counts[state]))
	}

	pending := 0
	for _, op := range sys.Operations() {
		if op.State.IsPending() {
			pending++
		}
	}
	r.pendingOps.Set(float64(pending))

	clk := sys.Clock()
	r.ordinal.Set(float64(clk.Ordinal))
	r.timestamp.Set(float64(clk.Timestamp))

	if v := sys.BoxValue(); v != nil {
		f, _ := v.Float64()
		r.boxValue.Set(f)
	}
}

var _ governance.Subscriber = (*Recorder)(nil)
