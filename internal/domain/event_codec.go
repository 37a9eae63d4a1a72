package domain

import (
	"encoding/json"
	"fmt"
)

var eventFactories = map[EventType]func() ParsedEvent{
	EventTypeProposalCreated:        func() ParsedEvent { return &ProposalCreatedEvent{} },
	EventTypeVoteCast:               func() ParsedEvent { return &VoteCastEvent{} },
	EventTypeProposalQueued:         func() ParsedEvent { return &ProposalQueuedEvent{} },
	EventTypeProposalExecuted:       func() ParsedEvent { return &ProposalExecutedEvent{} },
	EventTypeProposalCanceled:       func() ParsedEvent { return &ProposalCanceledEvent{} },
	EventTypeGovernorSettingChanged: func() ParsedEvent { return &GovernorSettingChangedEvent{} },
	EventTypeCallScheduled:          func() ParsedEvent { return &CallScheduledEvent{} },
	EventTypeCallExecuted:           func() ParsedEvent { return &CallExecutedEvent{} },
	EventTypeOperationCancelled:     func() ParsedEvent { return &OperationCancelledEvent{} },
	EventTypeMinDelayChange:         func() ParsedEvent { return &MinDelayChangeEvent{} },
	EventTypeRoleGranted:            func() ParsedEvent { return &RoleGrantedEvent{} },
	EventTypeRoleRevoked:            func() ParsedEvent { return &RoleRevokedEvent{} },
	EventTypeDelegateChanged:        func() ParsedEvent { return &DelegateChangedEvent{} },
	EventTypeDelegateVotesChanged:   func() ParsedEvent { return &DelegateVotesChangedEvent{} },
	EventTypeValueStored:            func() ParsedEvent { return &ValueStoredEvent{} },
	EventTypeNativeDeposit:          func() ParsedEvent { return &NativeDepositEvent{} },
}

// EncodeEvent serializes an event payload to JSON
func EncodeEvent(e ParsedEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent rebuilds a typed event from its name and JSON payload
func DecodeEvent(name string, payload []byte) (ParsedEvent, error) {
	factory, ok := eventFactories[EventType(name)]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", name)
	}
	e := factory()
	if err := json.Unmarshal(payload, e); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", name, err)
	}
	return e, nil
}

// ProposalOf returns the proposal an event refers to, if any
func ProposalOf(e ParsedEvent) (string, bool) {
	switch ev := e.(type) {
	case *ProposalCreatedEvent:
		return ev.ProposalID.Hex(), true
	case *VoteCastEvent:
		return ev.ProposalID.Hex(), true
	case *ProposalQueuedEvent:
		return ev.ProposalID.Hex(), true
	case *ProposalExecutedEvent:
		return ev.ProposalID.Hex(), true
	case *ProposalCanceledEvent:
		return ev.ProposalID.Hex(), true
	}
	return "", false
}
