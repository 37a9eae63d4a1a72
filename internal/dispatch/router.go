// Package dispatch routes calls from the execution queue to registered targets.
package dispatch

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// CallMsg is a single invocation of a target
type CallMsg struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Target is anything addressable that accepts opaque payloads
type Target interface {
	Call(ctx context.Context, msg CallMsg) ([]byte, error)
	// Snapshot captures the target's state. Calling the returned func restores it.
	Snapshot() (restore func())
}

// Router maps addresses to targets and holds native balances
type Router struct {
	targets map[common.Address]Target
	bank    *Bank
	logger  *slog.Logger
}

// NewRouter creates an empty router
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		targets: make(map[common.Address]Target),
		bank:    NewBank(),
		logger:  logger.With("component", "Router"),
	}
}

// Register binds target to addr, replacing any previous binding
func (r *Router) Register(addr common.Address, target Target) {
	r.targets[addr] = target
}

// Lookup returns the target at addr
func (r *Router) Lookup(addr common.Address) (Target, bool) {
	t, ok := r.targets[addr]
	return t, ok
}

// Bank returns the native balance book
func (r *Router) Bank() *Bank {
	return r.bank
}

// Call performs a single call. A failed call leaves no effect behind.
func (r *Router) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	restore := r.bank.Snapshot()
	var targetRestore func()
	if t, ok := r.targets[msg.To]; ok {
		targetRestore = t.Snapshot()
	}
	out, err := r.call(ctx, msg)
	if err != nil {
		if targetRestore != nil {
			targetRestore()
		}
		restore()
		return nil, err
	}
	return out, nil
}

// ExecuteBatch runs calls in order on behalf of from. If any call fails every
// target touched so far is restored and the native balances are rolled back.
func (r *Router) ExecuteBatch(ctx context.Context, from common.Address, calls []models.Call, onCall func(index int, call models.Call)) error {
	const op = "dispatch.executeBatch"

	restores := []func(){r.bank.Snapshot()}
	touched := make(map[common.Address]bool)
	rollback := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}

	for i, c := range calls {
		if t, ok := r.targets[c.Target]; ok && !touched[c.Target] {
			touched[c.Target] = true
			restores = append(restores, t.Snapshot())
		}
		msg := CallMsg{From: from, To: c.Target, Value: c.ValueOrZero(), Data: c.Data}
		if _, err := r.call(ctx, msg); err != nil {
			rollback()
			r.logger.Debug("batch rolled back", "index", i, "target", c.Target.Hex(), "error", err)
			if domain.KindOf(err) == domain.KindExecution {
				return err
			}
			return domain.NewError(op, domain.ErrCallFailed, "call %d to %s", i, c.Target.Hex()).WithCause(err)
		}
		if onCall != nil {
			onCall(i, c)
		}
	}
	return nil
}

func (r *Router) call(ctx context.Context, msg CallMsg) ([]byte, error) {
	const op = "dispatch.call"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() > 0 {
		if err := r.bank.Transfer(msg.From, msg.To, value); err != nil {
			return nil, err
		}
	}

	t, ok := r.targets[msg.To]
	if !ok {
		// a plain value transfer to an account without code
		if len(msg.Data) == 0 {
			return nil, nil
		}
		return nil, domain.NewError(op, domain.ErrUnknownTarget, "%s", msg.To.Hex())
	}
	return t.Call(ctx, msg)
}
