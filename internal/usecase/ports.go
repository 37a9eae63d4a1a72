package usecase

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// ErrNotInitialized is returned when no governance state has been persisted yet
var ErrNotInitialized = errors.New("governance not initialized, run `trebgov init` first")

var errAborted = errors.New("aborted by user")

// StateRepository persists the exported governance state
type StateRepository interface {
	Exists(ctx context.Context) (bool, error)
	Load(ctx context.Context) (*governance.State, error)
	Save(ctx context.Context, state *governance.State) error
	Path() string
	// Lock excludes every other writer, including other processes, until the
	// returned unlock is called
	Lock(ctx context.Context) (unlock func() error, err error)
}

// EventLog stores committed governance events
type EventLog interface {
	governance.Subscriber
	List(ctx context.Context, filter domain.EventFilter) ([]domain.EventEnvelope, error)
	Reset(ctx context.Context) error
}

// CalldataEncoder builds call payloads from a human readable signature
type CalldataEncoder interface {
	// Encode packs args for a signature such as "store(uint256)"
	Encode(signature string, args []string) ([]byte, error)
}

// ProposalFile is a multi-call proposal read from disk
type ProposalFile struct {
	Description string
	Calls       []CallSpec
}

// ProposalFileParser reads proposal files
type ProposalFileParser interface {
	ParseFile(ctx context.Context, path string) (*ProposalFile, error)
}

// ProposalSelector handles interactive selection of proposals
type ProposalSelector interface {
	SelectProposal(ctx context.Context, proposals []*models.ProposalView, prompt string) (*models.ProposalView, error)
}

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Accounts resolves the acting account of a command
type Accounts interface {
	// Resolve returns the account named by ref, or the default sender when ref is empty
	Resolve(ref string) (common.Address, error)
}
