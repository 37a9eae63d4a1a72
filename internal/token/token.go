// Package token is the votes-bearing token. It owns balances and reports every
// balance change to the voting-power ledger.
package token

import (
	"context"
	"log/slog"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/votes"
)

const tokenABI = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"delegate","stateMutability":"nonpayable","inputs":[{"name":"delegatee","type":"address"}],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// ABI is the calldata interface of the token
var ABI = dispatch.MustParseABI(tokenABI)

// maxSupply keeps checkpointed power within 208 bits
var maxSupply = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 208), uint256.NewInt(1))

// Token holds balances and mirrors them into a votes.Ledger
type Token struct {
	address  common.Address
	name     string
	symbol   string
	owner    common.Address
	balances map[common.Address]*uint256.Int
	supply   *uint256.Int
	ledger   *votes.Ledger
	clock    clock.Clock
	logger   *slog.Logger
}

// State is the persisted form of a Token. The ledger persists separately.
type State struct {
	Owner    common.Address                  `json:"owner"`
	Balances map[common.Address]*uint256.Int `json:"balances"`
}

var _ dispatch.Target = (*Token)(nil)

// New creates a token whose minter is owner
func New(address common.Address, name, symbol string, owner common.Address, ledger *votes.Ledger, clk clock.Clock, logger *slog.Logger) *Token {
	if logger == nil {
		logger = slog.Default()
	}
	return &Token{
		address:  address,
		name:     name,
		symbol:   symbol,
		owner:    owner,
		balances: make(map[common.Address]*uint256.Int),
		supply:   new(uint256.Int),
		ledger:   ledger,
		clock:    clk,
		logger:   logger.With("component", "Token"),
	}
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Owner() common.Address   { return t.owner }

// BalanceOf returns a copy of account's balance
func (t *Token) BalanceOf(account common.Address) *uint256.Int {
	if b, ok := t.balances[account]; ok {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

// TotalSupply returns a copy of the total supply
func (t *Token) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(t.supply)
}

// Holders returns accounts with a non-zero balance, sorted
func (t *Token) Holders() []common.Address {
	var out []common.Address
	for a, b := range t.balances {
		if !b.IsZero() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// Mint creates amount for to. Only the owner may mint.
func (t *Token) Mint(caller, to common.Address, amount *uint256.Int) error {
	const op = "token.mint"
	if caller != t.owner {
		return domain.NewError(op, domain.ErrNotOwner, "caller %s", caller.Hex())
	}
	supply, overflow := new(uint256.Int).AddOverflow(t.supply, amount)
	if overflow || supply.Gt(maxSupply) {
		return domain.NewError(op, domain.ErrCallFailed, "supply cap exceeded")
	}
	if err := t.setBalance(to, new(uint256.Int).Add(t.BalanceOf(to), amount)); err != nil {
		return err
	}
	t.supply = supply
	return nil
}

// Burn destroys amount held by from
func (t *Token) Burn(from common.Address, amount *uint256.Int) error {
	bal := t.BalanceOf(from)
	if bal.Lt(amount) {
		return domain.NewError("token.burn", domain.ErrCallFailed, "balance %s < %s", bal.Dec(), amount.Dec())
	}
	if err := t.setBalance(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	t.supply.Sub(t.supply, amount)
	return nil
}

// Transfer moves amount from one account to another
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	bal := t.BalanceOf(from)
	if bal.Lt(amount) {
		return domain.NewError("token.transfer", domain.ErrCallFailed, "balance %s < %s", bal.Dec(), amount.Dec())
	}
	if from == to || amount.IsZero() {
		return nil
	}
	restore := t.Snapshot()
	if err := t.setBalance(from, bal.Sub(bal, amount)); err != nil {
		restore()
		return err
	}
	if err := t.setBalance(to, new(uint256.Int).Add(t.BalanceOf(to), amount)); err != nil {
		restore()
		return err
	}
	return nil
}

// Delegate attributes account's voting units to delegatee
func (t *Token) Delegate(account, delegatee common.Address) error {
	return t.ledger.Delegate(account, delegatee, t.clock.Ordinal())
}

func (t *Token) setBalance(account common.Address, balance *uint256.Int) error {
	if err := t.ledger.RecordBalanceChange(account, t.BalanceOf(account), balance, t.clock.Ordinal()); err != nil {
		return err
	}
	t.balances[account] = balance
	t.logger.Debug("balance updated", "account", account.Hex(), "balance", balance.Dec())
	return nil
}

// Call applies an ABI-encoded payload
func (t *Token) Call(_ context.Context, msg dispatch.CallMsg) ([]byte, error) {
	const op = "token.call"
	method, args, err := dispatch.DecodeCall(ABI, msg.Data)
	if err != nil {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%v", err)
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%s is not payable", method.Name)
	}

	amount := func(v any) (*uint256.Int, error) {
		u, overflow := uint256.FromBig(v.(*big.Int))
		if overflow {
			return nil, domain.NewError(op, domain.ErrCallFailed, "amount out of range")
		}
		return u, nil
	}

	switch method.Name {
	case "transfer":
		v, err := amount(args[1])
		if err != nil {
			return nil, err
		}
		if err := t.Transfer(msg.From, args[0].(common.Address), v); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "mint":
		v, err := amount(args[1])
		if err != nil {
			return nil, err
		}
		return nil, t.Mint(msg.From, args[0].(common.Address), v)
	case "delegate":
		return nil, t.Delegate(msg.From, args[0].(common.Address))
	case "balanceOf":
		return method.Outputs.Pack(t.BalanceOf(args[0].(common.Address)).ToBig())
	case "totalSupply":
		return method.Outputs.Pack(t.supply.ToBig())
	}
	return nil, domain.NewError(op, domain.ErrCallFailed, "unsupported method %s", method.Name)
}

// Snapshot captures balances together with the ledger history they feed
func (t *Token) Snapshot() func() {
	saved := t.Export()
	ledger := t.ledger.Export()
	return func() {
		t.Restore(saved)
		// an exported ledger state always restores
		_ = t.ledger.Restore(ledger)
	}
}

// Export returns the persisted form
func (t *Token) Export() State {
	balances := make(map[common.Address]*uint256.Int, len(t.balances))
	for a, b := range t.balances {
		if !b.IsZero() {
			balances[a] = new(uint256.Int).Set(b)
		}
	}
	return State{Owner: t.owner, Balances: balances}
}

// Restore replaces balances and recomputes the supply
func (t *Token) Restore(s State) {
	t.owner = s.Owner
	t.balances = make(map[common.Address]*uint256.Int, len(s.Balances))
	t.supply = new(uint256.Int)
	for a, b := range s.Balances {
		t.balances[a] = new(uint256.Int).Set(b)
		t.supply.Add(t.supply, b)
	}
}

// TransferOwnership hands the minter role to newOwner
func (t *Token) TransferOwnership(caller, newOwner common.Address) error {
	if caller != t.owner {
		return domain.NewError("token.transferOwnership", domain.ErrNotOwner, "caller %s", caller.Hex())
	}
	t.owner = newOwner
	return nil
}

// TransferCalldata encodes transfer(to, amount)
func TransferCalldata(to common.Address, amount *uint256.Int) ([]byte, error) {
	return ABI.Pack("transfer", to, amount.ToBig())
}
