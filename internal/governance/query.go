package governance

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governor"
)

// ClockInfo describes the current clock position
type ClockInfo struct {
	Mode      clock.Mode `json:"mode"`
	Ordinal   uint64     `json:"ordinal"`
	Timestamp uint64     `json:"timestamp"`
}

// AccountInfo is the token and voting view of one account
type AccountInfo struct {
	Address      common.Address `json:"address"`
	Balance      *uint256.Int   `json:"balance"`
	Power        *uint256.Int   `json:"votingPower"`
	Delegate     common.Address `json:"delegate"`
	HasDelegate  bool           `json:"hasDelegate"`
	NativeAmount *big.Int       `json:"nativeBalance"`
}

// RoleMembers lists the holders of each timelock role
type RoleMembers map[models.Role][]common.Address

// TimelockInfo summarises the execution queue
type TimelockInfo struct {
	Address     common.Address `json:"address"`
	MinDelay    uint64         `json:"minDelay"`
	GracePeriod uint64         `json:"gracePeriod"`
	Balance     *big.Int       `json:"balance"`
}

func (s *System) Clock() ClockInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ClockInfo{Mode: s.clock.Mode(), Ordinal: s.clock.Ordinal(), Timestamp: s.clock.Now()}
}

// Proposal returns the computed view of a proposal
func (s *System) Proposal(id common.Hash) (*models.ProposalView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.governor.Proposal(id)
}

// Proposals returns all proposals, optionally filtered by state
func (s *System) Proposals(states ...models.ProposalState) []*models.ProposalView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.governor.Proposals()
	if len(states) == 0 {
		return all
	}
	return lo.Filter(all, func(p *models.ProposalView, _ int) bool {
		return lo.Contains(states, p.State)
	})
}

// ResolveProposal returns the proposals whose id starts with prefix
func (s *System) ResolveProposal(prefix string) []common.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.governor.FindProposals(prefix)
}

// ProposalState returns the computed state of a proposal
func (s *System) ProposalState(id common.Hash) (models.ProposalState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.governor.State(id)
}

// Settings returns the governor settings currently in force
func (s *System) Settings() governor.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.governor.Settings()
}

// Operation returns a timelock operation
func (s *System) Operation(id common.Hash) (*models.OperationView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timelock.Operation(id)
}

// Operations returns all timelock operations
func (s *System) Operations() []*models.OperationView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timelock.Operations()
}

// Timelock summarises the execution queue
func (s *System) Timelock() TimelockInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TimelockInfo{
		Address:     s.addresses.Timelock,
		MinDelay:    s.timelock.MinDelay(),
		GracePeriod: s.timelock.GracePeriod(),
		Balance:     s.timelock.Balance(),
	}
}

// Roles returns every role with its holders
func (s *System) Roles() RoleMembers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(RoleMembers, len(models.AllRoles))
	for _, r := range models.AllRoles {
		out[r] = s.timelock.Roles().Members(r)
	}
	return out
}

// HasRole reports whether account holds role in the timelock
func (s *System) HasRole(role models.Role, account common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timelock.HasRole(role, account)
}

// BoxValue returns the value held by the protected resource
func (s *System) BoxValue() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.box.Retrieve()
}

// Account returns the token and voting view of an account
func (s *System) Account(addr common.Address) AccountInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	delegate, ok := s.ledger.Delegates(addr)
	return AccountInfo{
		Address:      addr,
		Balance:      s.token.BalanceOf(addr),
		Power:        s.ledger.CurrentPower(addr),
		Delegate:     delegate,
		HasDelegate:  ok,
		NativeAmount: s.router.Bank().Balance(addr),
	}
}

// Accounts returns every account known to the token or the ledger
func (s *System) Accounts() []AccountInfo {
	s.mu.RLock()
	addrs := lo.Uniq(append(s.token.Holders(), s.ledger.Accounts()...))
	s.mu.RUnlock()
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(addrs[j]) < 0 })
	return lo.Map(addrs, func(a common.Address, _ int) AccountInfo { return s.Account(a) })
}

// PowerAt returns an account's voting power at a past ordinal
func (s *System) PowerAt(addr common.Address, ordinal uint64) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.PowerAt(addr, ordinal)
}

// TotalSupply returns the token supply
func (s *System) TotalSupply() *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.TotalSupply()
}

// PastTotalSupply returns the total delegated voting power at a past ordinal
func (s *System) PastTotalSupply(ordinal uint64) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.TotalPowerAt(ordinal)
}

// Checkpoints returns the voting power history of an account
func (s *System) Checkpoints(addr common.Address) []models.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Checkpoints(addr)
}
