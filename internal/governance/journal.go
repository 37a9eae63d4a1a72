package governance

import (
	"context"

	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// Subscriber receives the events of every committed call
type Subscriber interface {
	Publish(ctx context.Context, events []domain.EventEnvelope) error
}

// SubscriberFunc adapts a function to Subscriber
type SubscriberFunc func(ctx context.Context, events []domain.EventEnvelope) error

func (f SubscriberFunc) Publish(ctx context.Context, events []domain.EventEnvelope) error {
	return f(ctx, events)
}

// journal buffers events until the call that emitted them commits
type journal struct {
	pending []domain.ParsedEvent
	seq     uint64
}

func (j *journal) Emit(e domain.ParsedEvent) {
	j.pending = append(j.pending, e)
}

func (j *journal) mark() int {
	return len(j.pending)
}

func (j *journal) rollback(mark int) {
	j.pending = j.pending[:mark]
}

func (j *journal) drain(ordinal, timestamp uint64) []domain.EventEnvelope {
	out := make([]domain.EventEnvelope, len(j.pending))
	for i, e := range j.pending {
		j.seq++
		out[i] = domain.EventEnvelope{Seq: j.seq, Ordinal: ordinal, Timestamp: timestamp, Event: e}
	}
	j.pending = nil
	return out
}
