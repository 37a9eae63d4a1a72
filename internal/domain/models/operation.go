package models

import "github.com/ethereum/go-ethereum/common"

// OperationState is the computed state of a timelock operation
type OperationState string

const (
	OperationStateUnset    OperationState = "unset"
	OperationStateWaiting  OperationState = "waiting"
	OperationStateReady    OperationState = "ready"
	OperationStateExpired  OperationState = "expired"
	OperationStateDone     OperationState = "done"
	OperationStateCanceled OperationState = "canceled"
)

// IsPending reports whether the operation has been admitted and not yet settled
func (s OperationState) IsPending() bool {
	return s == OperationStateWaiting || s == OperationStateReady || s == OperationStateExpired
}

// TimelockOperation is an admitted batch of calls awaiting its delay
type TimelockOperation struct {
	ID          common.Hash `json:"id"`
	Calls       []Call      `json:"calls"`
	Predecessor common.Hash `json:"predecessor"`
	Salt        common.Hash `json:"salt"`
	Delay       uint64      `json:"delay"`
	ScheduledAt uint64      `json:"scheduledAt"`
	ReadyAt     uint64      `json:"readyAt"`
	Done        bool        `json:"done"`
	Canceled    bool        `json:"canceled"`
}

// OperationView is the externally observable summary of an operation
type OperationView struct {
	TimelockOperation
	State OperationState `json:"state"`
}
