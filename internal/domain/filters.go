package domain

import (
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// EventFilter defines filtering options for the event log
type EventFilter struct {
	Name       string // event name, e.g. "VoteCast"
	ProposalID string // full proposal id, 0x-prefixed
	AfterSeq   uint64
	Limit      int
}

// ProposalFilter defines filtering options for proposals
type ProposalFilter struct {
	States   []models.ProposalState
	Proposer string
}
