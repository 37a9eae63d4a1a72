package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-gov/internal/adapters/abi"
	"github.com/trebuchet-org/treb-gov/internal/adapters/accounts"
	"github.com/trebuchet-org/treb-gov/internal/adapters/eventlog"
	"github.com/trebuchet-org/treb-gov/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-gov/internal/adapters/proposalfile"
	"github.com/trebuchet-org/treb-gov/internal/adapters/repository/state"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// StorageSet provides the persisted state and event history
var StorageSet = wire.NewSet(
	state.NewFileRepository,
	wire.Bind(new(usecase.StateRepository), new(*state.FileRepository)),

	eventlog.NewStore,
	wire.Bind(new(usecase.EventLog), new(*eventlog.Store)),
)

// EncodingSet provides calldata and proposal file handling
var EncodingSet = wire.NewSet(
	abi.NewEncoder,
	wire.Bind(new(usecase.CalldataEncoder), new(*abi.Encoder)),

	proposalfile.NewParser,
	wire.Bind(new(usecase.ProposalFileParser), new(*proposalfile.Parser)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ProposalSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
)

// AccountsSet provides sender resolution
var AccountsSet = wire.NewSet(
	accounts.NewResolver,
	wire.Bind(new(usecase.Accounts), new(*accounts.Resolver)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	StorageSet,
	EncodingSet,
	InteractiveSet,
	AccountsSet,
)
