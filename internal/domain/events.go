package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

type EventType string

const (
	EventTypeProposalCreated        EventType = "ProposalCreated"
	EventTypeVoteCast               EventType = "VoteCast"
	EventTypeProposalQueued         EventType = "ProposalQueued"
	EventTypeProposalExecuted       EventType = "ProposalExecuted"
	EventTypeProposalCanceled       EventType = "ProposalCanceled"
	EventTypeGovernorSettingChanged EventType = "GovernorSettingChanged"
	EventTypeCallScheduled          EventType = "CallScheduled"
	EventTypeCallExecuted           EventType = "CallExecuted"
	EventTypeOperationCancelled     EventType = "Cancelled"
	EventTypeMinDelayChange         EventType = "MinDelayChange"
	EventTypeRoleGranted            EventType = "RoleGranted"
	EventTypeRoleRevoked            EventType = "RoleRevoked"
	EventTypeDelegateChanged        EventType = "DelegateChanged"
	EventTypeDelegateVotesChanged   EventType = "DelegateVotesChanged"
	EventTypeValueStored            EventType = "ValueStored"
	EventTypeNativeDeposit          EventType = "NativeDeposit"
)

// ParsedEvent is the interface for all governance events
type ParsedEvent interface {
	ContractEventName() string
	String() string
}

// EventSink receives events emitted by governance components
type EventSink interface {
	Emit(event ParsedEvent)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(ParsedEvent)

func (f EventSinkFunc) Emit(event ParsedEvent) { f(event) }

// NopSink discards events
type NopSink struct{}

func (NopSink) Emit(ParsedEvent) {}

func short(h fmt.Stringer) string {
	s := h.String()
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}

type ProposalCreatedEvent struct {
	ProposalID  common.Hash
	Proposer    common.Address
	Calls       []models.Call
	VoteStart   uint64
	VoteEnd     uint64
	Description string
}

func (ProposalCreatedEvent) ContractEventName() string {
	return string(EventTypeProposalCreated)
}

func (e *ProposalCreatedEvent) String() string {
	return fmt.Sprintf("%s: id=%s, proposer=%s, calls=%d, start=%d, end=%d",
		e.ContractEventName(), short(e.ProposalID), short(e.Proposer), len(e.Calls), e.VoteStart, e.VoteEnd)
}

type VoteCastEvent struct {
	Voter      common.Address
	ProposalID common.Hash
	Support    models.VoteType
	Weight     *uint256.Int
	Reason     string
}

func (VoteCastEvent) ContractEventName() string {
	return string(EventTypeVoteCast)
}

func (e *VoteCastEvent) String() string {
	return fmt.Sprintf("%s: id=%s, voter=%s, support=%s, weight=%s",
		e.ContractEventName(), short(e.ProposalID), short(e.Voter), e.Support, e.Weight.Dec())
}

type ProposalQueuedEvent struct {
	ProposalID  common.Hash
	OperationID common.Hash
	ETA         uint64
}

func (ProposalQueuedEvent) ContractEventName() string {
	return string(EventTypeProposalQueued)
}

func (e *ProposalQueuedEvent) String() string {
	return fmt.Sprintf("%s: id=%s, operation=%s, eta=%d",
		e.ContractEventName(), short(e.ProposalID), short(e.OperationID), e.ETA)
}

type ProposalExecutedEvent struct {
	ProposalID common.Hash
}

func (ProposalExecutedEvent) ContractEventName() string {
	return string(EventTypeProposalExecuted)
}

func (e *ProposalExecutedEvent) String() string {
	return fmt.Sprintf("%s: id=%s", e.ContractEventName(), short(e.ProposalID))
}

type ProposalCanceledEvent struct {
	ProposalID common.Hash
	Canceller  common.Address
}

func (ProposalCanceledEvent) ContractEventName() string {
	return string(EventTypeProposalCanceled)
}

func (e *ProposalCanceledEvent) String() string {
	return fmt.Sprintf("%s: id=%s, by=%s", e.ContractEventName(), short(e.ProposalID), short(e.Canceller))
}

type GovernorSettingChangedEvent struct {
	Setting  string
	OldValue string
	NewValue string
}

func (GovernorSettingChangedEvent) ContractEventName() string {
	return string(EventTypeGovernorSettingChanged)
}

func (e *GovernorSettingChangedEvent) String() string {
	return fmt.Sprintf("%s: %s %s -> %s", e.ContractEventName(), e.Setting, e.OldValue, e.NewValue)
}

type CallScheduledEvent struct {
	OperationID common.Hash
	Index       int
	Call        models.Call
	Predecessor common.Hash
	Delay       uint64
}

func (CallScheduledEvent) ContractEventName() string {
	return string(EventTypeCallScheduled)
}

func (e *CallScheduledEvent) String() string {
	return fmt.Sprintf("%s: id=%s, index=%d, target=%s, delay=%d",
		e.ContractEventName(), short(e.OperationID), e.Index, short(e.Call.Target), e.Delay)
}

type CallExecutedEvent struct {
	OperationID common.Hash
	Index       int
	Call        models.Call
}

func (CallExecutedEvent) ContractEventName() string {
	return string(EventTypeCallExecuted)
}

func (e *CallExecutedEvent) String() string {
	return fmt.Sprintf("%s: id=%s, index=%d, target=%s",
		e.ContractEventName(), short(e.OperationID), e.Index, short(e.Call.Target))
}

type OperationCancelledEvent struct {
	OperationID common.Hash
}

func (OperationCancelledEvent) ContractEventName() string {
	return string(EventTypeOperationCancelled)
}

func (e *OperationCancelledEvent) String() string {
	return fmt.Sprintf("%s: id=%s", e.ContractEventName(), short(e.OperationID))
}

type MinDelayChangeEvent struct {
	OldDuration uint64
	NewDuration uint64
}

func (MinDelayChangeEvent) ContractEventName() string {
	return string(EventTypeMinDelayChange)
}

func (e *MinDelayChangeEvent) String() string {
	return fmt.Sprintf("%s: %ds -> %ds", e.ContractEventName(), e.OldDuration, e.NewDuration)
}

type RoleGrantedEvent struct {
	Role    models.Role
	Account common.Address
	Sender  common.Address
}

func (RoleGrantedEvent) ContractEventName() string {
	return string(EventTypeRoleGranted)
}

func (e *RoleGrantedEvent) String() string {
	return fmt.Sprintf("%s: role=%s, account=%s, sender=%s",
		e.ContractEventName(), e.Role, short(e.Account), short(e.Sender))
}

type RoleRevokedEvent struct {
	Role    models.Role
	Account common.Address
	Sender  common.Address
}

func (RoleRevokedEvent) ContractEventName() string {
	return string(EventTypeRoleRevoked)
}

func (e *RoleRevokedEvent) String() string {
	return fmt.Sprintf("%s: role=%s, account=%s, sender=%s",
		e.ContractEventName(), e.Role, short(e.Account), short(e.Sender))
}

type DelegateChangedEvent struct {
	Delegator    common.Address
	FromDelegate common.Address
	ToDelegate   common.Address
}

func (DelegateChangedEvent) ContractEventName() string {
	return string(EventTypeDelegateChanged)
}

func (e *DelegateChangedEvent) String() string {
	return fmt.Sprintf("%s: delegator=%s, from=%s, to=%s",
		e.ContractEventName(), short(e.Delegator), short(e.FromDelegate), short(e.ToDelegate))
}

type DelegateVotesChangedEvent struct {
	Delegate      common.Address
	PreviousVotes *uint256.Int
	NewVotes      *uint256.Int
}

func (DelegateVotesChangedEvent) ContractEventName() string {
	return string(EventTypeDelegateVotesChanged)
}

func (e *DelegateVotesChangedEvent) String() string {
	return fmt.Sprintf("%s: delegate=%s, %s -> %s",
		e.ContractEventName(), short(e.Delegate), e.PreviousVotes.Dec(), e.NewVotes.Dec())
}

type ValueStoredEvent struct {
	Target common.Address
	Value  *big.Int
}

func (ValueStoredEvent) ContractEventName() string {
	return string(EventTypeValueStored)
}

func (e *ValueStoredEvent) String() string {
	return fmt.Sprintf("%s: target=%s, value=%s", e.ContractEventName(), short(e.Target), e.Value)
}

type NativeDepositEvent struct {
	From   common.Address
	Amount *big.Int
}

func (NativeDepositEvent) ContractEventName() string {
	return string(EventTypeNativeDeposit)
}

func (e *NativeDepositEvent) String() string {
	return fmt.Sprintf("%s: from=%s, amount=%s", e.ContractEventName(), short(e.From), e.Amount)
}

// EventEnvelope is an event stamped with the clock position of the call that emitted it
type EventEnvelope struct {
	Seq       uint64
	Ordinal   uint64
	Timestamp uint64
	Event     ParsedEvent
}
