package usecase

import (
	"context"

	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// ListEventsParams contains parameters for listing events
type ListEventsParams struct {
	Filter domain.EventFilter
}

// ListEvents reads the committed event log
type ListEvents struct {
	events EventLog
}

// NewListEvents creates a new ListEvents use case
func NewListEvents(events EventLog) *ListEvents {
	return &ListEvents{events: events}
}

// Run executes the list events use case
func (uc *ListEvents) Run(ctx context.Context, params ListEventsParams) ([]domain.EventEnvelope, error) {
	return uc.events.List(ctx, params.Filter)
}
