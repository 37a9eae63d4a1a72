// Package box is the protected resource: a single stored value that only its
// owner may change.
package box

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

const boxABI = `[
	{"type":"function","name":"store","stateMutability":"nonpayable","inputs":[{"name":"newValue","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"retrieve","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]}
]`

// ABI is the calldata interface of a Box
var ABI = dispatch.MustParseABI(boxABI)

// Box holds one value
type Box struct {
	address common.Address
	owner   common.Address
	value   *big.Int
	events  domain.EventSink
	logger  *slog.Logger
}

// State is the persisted form of a Box
type State struct {
	Owner common.Address `json:"owner"`
	Value *big.Int       `json:"value"`
}

var _ dispatch.Target = (*Box)(nil)

// New creates a box at address owned by owner
func New(address, owner common.Address, events domain.EventSink, logger *slog.Logger) *Box {
	if events == nil {
		events = domain.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Box{
		address: address,
		owner:   owner,
		value:   new(big.Int),
		events:  events,
		logger:  logger.With("component", "Box"),
	}
}

func (b *Box) Address() common.Address { return b.address }
func (b *Box) Owner() common.Address   { return b.owner }

// Retrieve returns the stored value
func (b *Box) Retrieve() *big.Int {
	return new(big.Int).Set(b.value)
}

// Store replaces the value. Only the owner may call it.
func (b *Box) Store(caller common.Address, value *big.Int) error {
	if caller != b.owner {
		return domain.NewError("box.store", domain.ErrNotOwner, "caller %s", caller.Hex())
	}
	if value == nil || value.Sign() < 0 {
		return domain.NewError("box.store", domain.ErrCallFailed, "value out of range")
	}
	b.value = new(big.Int).Set(value)
	b.logger.Debug("value stored", "value", b.value)
	b.events.Emit(&domain.ValueStoredEvent{Target: b.address, Value: b.Retrieve()})
	return nil
}

// TransferOwnership hands the box to a new owner
func (b *Box) TransferOwnership(caller, newOwner common.Address) error {
	if caller != b.owner {
		return domain.NewError("box.transferOwnership", domain.ErrNotOwner, "caller %s", caller.Hex())
	}
	b.owner = newOwner
	return nil
}

// Call decodes and applies an ABI-encoded payload
func (b *Box) Call(_ context.Context, msg dispatch.CallMsg) ([]byte, error) {
	const op = "box.call"
	method, args, err := dispatch.DecodeCall(ABI, msg.Data)
	if err != nil {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%v", err)
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%s is not payable", method.Name)
	}

	switch method.Name {
	case "store":
		return nil, b.Store(msg.From, args[0].(*big.Int))
	case "retrieve":
		return packOutputs(method, b.Retrieve())
	case "owner":
		return packOutputs(method, b.owner)
	case "transferOwnership":
		return nil, b.TransferOwnership(msg.From, args[0].(common.Address))
	}
	return nil, domain.NewError(op, domain.ErrCallFailed, "unsupported method %s", method.Name)
}

// Snapshot captures value and owner
func (b *Box) Snapshot() func() {
	saved := b.Export()
	return func() { b.Restore(saved) }
}

func (b *Box) Export() State {
	return State{Owner: b.owner, Value: b.Retrieve()}
}

func (b *Box) Restore(s State) {
	b.owner = s.Owner
	b.value = new(big.Int)
	if s.Value != nil {
		b.value.Set(s.Value)
	}
}

// StoreCalldata encodes store(value)
func StoreCalldata(value *big.Int) ([]byte, error) {
	return ABI.Pack("store", value)
}

func packOutputs(method *abi.Method, values ...any) ([]byte, error) {
	return method.Outputs.Pack(values...)
}
