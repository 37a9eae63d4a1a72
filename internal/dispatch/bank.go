package dispatch

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

// Bank tracks native value held by addresses
type Bank struct {
	balances map[common.Address]*big.Int
}

// NewBank creates an empty bank
func NewBank() *Bank {
	return &Bank{balances: make(map[common.Address]*big.Int)}
}

// Balance returns a copy of the native balance of addr
func (b *Bank) Balance(addr common.Address) *big.Int {
	if v, ok := b.balances[addr]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Credit adds amount to addr
func (b *Bank) Credit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	cur := b.Balance(addr)
	b.balances[addr] = cur.Add(cur, amount)
}

// Transfer moves amount from one address to another
func (b *Bank) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	have := b.Balance(from)
	if have.Cmp(amount) < 0 {
		return domain.NewError("dispatch.transfer", domain.ErrInsufficientBalance,
			"%s holds %s, needs %s", from.Hex(), have, amount)
	}
	b.balances[from] = have.Sub(have, amount)
	b.Credit(to, amount)
	return nil
}

// Snapshot captures all balances
func (b *Bank) Snapshot() func() {
	saved := b.Export()
	return func() { b.Restore(saved) }
}

// Export returns non-zero balances keyed by address
func (b *Bank) Export() map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int, len(b.balances))
	for addr, v := range b.balances {
		if v.Sign() != 0 {
			out[addr] = new(big.Int).Set(v)
		}
	}
	return out
}

// Restore replaces all balances
func (b *Bank) Restore(balances map[common.Address]*big.Int) {
	b.balances = make(map[common.Address]*big.Int, len(balances))
	for addr, v := range balances {
		b.balances[addr] = new(big.Int).Set(v)
	}
}

// Holders returns the addresses with a non-zero balance, sorted
func (b *Bank) Holders() []common.Address {
	var out []common.Address
	for addr, v := range b.balances {
		if v.Sign() != 0 {
			out = append(out, addr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}
