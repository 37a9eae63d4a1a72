package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every rejected governance operation
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindEligibility
	KindSequence
	KindAuthorization
	KindExecution
)

// Kind sentinels. Every *GovernanceError unwraps to exactly one of them.
var (
	// ErrEligibility is returned when the caller may not take part in the operation
	ErrEligibility = errors.New("eligibility error")

	// ErrSequence is returned when an operation is attempted in the wrong lifecycle state
	ErrSequence = errors.New("sequence error")

	// ErrAuthorization is returned when the caller lacks a required role or ownership
	ErrAuthorization = errors.New("authorization error")

	// ErrExecution is returned when a call against a target fails
	ErrExecution = errors.New("execution failure")
)

// Eligibility reasons
var (
	ErrInsufficientProposerVotes = errors.New("proposer votes below proposal threshold")
	ErrInvalidProposal           = errors.New("invalid proposal")
	ErrRestrictedProposer        = errors.New("proposal restricted to another proposer")
	ErrVoteNotActive             = errors.New("proposal is not active")
	ErrAlreadyVoted              = errors.New("vote already cast")
	ErrInvalidVoteType           = errors.New("invalid vote type")
)

// Sequence reasons
var (
	ErrUnknownProposal         = errors.New("unknown proposal")
	ErrProposalExists          = errors.New("proposal already exists")
	ErrUnexpectedProposalState = errors.New("unexpected proposal state")
	ErrOperationExists         = errors.New("operation already scheduled")
	ErrOperationNotPending     = errors.New("operation is not pending")
	ErrOperationNotReady       = errors.New("operation is not ready")
	ErrOperationExpired        = errors.New("operation grace period elapsed")
	ErrMissingDependency       = errors.New("predecessor operation not executed")
	ErrInsufficientDelay       = errors.New("delay below minimum delay")
	ErrFutureLookup            = errors.New("lookup of a future ordinal")
	ErrCheckpointOrder         = errors.New("checkpoint ordinal out of order")
	ErrBalanceMismatch         = errors.New("recorded balance does not match ledger")
)

// Authorization reasons
var (
	ErrMissingRole        = errors.New("account is missing role")
	ErrUnauthorizedCaller = errors.New("unauthorized caller")
	ErrNotOwner           = errors.New("caller is not the owner")
	ErrBadConfirmation    = errors.New("roles can only be renounced for self")
)

// Execution reasons
var (
	ErrCallFailed          = errors.New("call reverted")
	ErrUnknownTarget       = errors.New("no target at address")
	ErrInsufficientBalance = errors.New("insufficient native balance")
)

var reasonKinds = map[error]ErrorKind{
	ErrInsufficientProposerVotes: KindEligibility,
	ErrInvalidProposal:           KindEligibility,
	ErrRestrictedProposer:        KindEligibility,
	ErrVoteNotActive:             KindEligibility,
	ErrAlreadyVoted:              KindEligibility,
	ErrInvalidVoteType:           KindEligibility,

	ErrUnknownProposal:         KindSequence,
	ErrProposalExists:          KindSequence,
	ErrUnexpectedProposalState: KindSequence,
	ErrOperationExists:         KindSequence,
	ErrOperationNotPending:     KindSequence,
	ErrOperationNotReady:       KindSequence,
	ErrOperationExpired:        KindSequence,
	ErrMissingDependency:       KindSequence,
	ErrInsufficientDelay:       KindSequence,
	ErrFutureLookup:            KindSequence,
	ErrCheckpointOrder:         KindSequence,
	ErrBalanceMismatch:         KindSequence,

	ErrMissingRole:        KindAuthorization,
	ErrUnauthorizedCaller: KindAuthorization,
	ErrNotOwner:           KindAuthorization,
	ErrBadConfirmation:    KindAuthorization,

	ErrCallFailed:          KindExecution,
	ErrUnknownTarget:       KindExecution,
	ErrInsufficientBalance: KindExecution,
}

func (k ErrorKind) String() string {
	switch k {
	case KindEligibility:
		return "EligibilityError"
	case KindSequence:
		return "SequenceError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindExecution:
		return "ExecutionFailure"
	default:
		return "UnknownError"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindEligibility:
		return ErrEligibility
	case KindSequence:
		return ErrSequence
	case KindAuthorization:
		return ErrAuthorization
	case KindExecution:
		return ErrExecution
	default:
		return nil
	}
}

// GovernanceError is a rejected operation. Reason is one of the reason sentinels
// above, Cause is an optional underlying error (e.g. the target's own failure).
type GovernanceError struct {
	Kind   ErrorKind
	Op     string
	Reason error
	Cause  error
	Detail string
}

// NewError builds a GovernanceError whose kind is derived from the reason
func NewError(op string, reason error, detail string, args ...any) *GovernanceError {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &GovernanceError{
		Kind:   reasonKinds[reason],
		Op:     op,
		Reason: reason,
		Detail: detail,
	}
}

// WithCause attaches the underlying failure
func (e *GovernanceError) WithCause(cause error) *GovernanceError {
	e.Cause = cause
	return e
}

func (e *GovernanceError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Reason != nil {
		b.WriteString(": ")
		b.WriteString(e.Reason.Error())
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the kind and reason only. Cause is kept out of the chain so a
// wrapped target failure never makes the error match a second kind.
func (e *GovernanceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	return errs
}

// KindOf returns the kind of the outermost GovernanceError in err's chain
func KindOf(err error) ErrorKind {
	var gerr *GovernanceError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}
