// Package timelock implements the role-gated execution queue. Admitted
// operations wait at least the minimum delay before an executor may run them,
// and every call of an operation succeeds or none of its effects remain.
package timelock

import (
	"context"
	"log/slog"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// Config holds the construction parameters of a Controller
type Config struct {
	// MinDelay and GracePeriod are in seconds. A zero grace period disables expiry.
	MinDelay    uint64
	GracePeriod uint64
	Proposers   []common.Address
	Executors   []common.Address
	// Admin receives the admin role in addition to the timelock itself. Zero for none.
	Admin common.Address
}

// Controller is the execution queue
type Controller struct {
	address     common.Address
	clock       clock.Clock
	router      *dispatch.Router
	roles       *RoleTable
	operations  map[common.Hash]*models.TimelockOperation
	minDelay    uint64
	gracePeriod uint64
	events      domain.EventSink
	logger      *slog.Logger
}

// State is the persisted form of a Controller
type State struct {
	MinDelay    uint64                           `json:"minDelay"`
	GracePeriod uint64                           `json:"gracePeriod"`
	Roles       map[models.Role][]common.Address `json:"roles"`
	Operations  []models.TimelockOperation       `json:"operations"`
	Balance     *big.Int                         `json:"balance,omitempty"`
}

// New creates a controller at address and registers it with the router.
// Proposers also receive the canceller role.
func New(address common.Address, cfg Config, clk clock.Clock, router *dispatch.Router, events domain.EventSink, logger *slog.Logger) *Controller {
	if events == nil {
		events = domain.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		address:     address,
		clock:       clk,
		router:      router,
		roles:       NewRoleTable(),
		operations:  make(map[common.Hash]*models.TimelockOperation),
		minDelay:    cfg.MinDelay,
		gracePeriod: cfg.GracePeriod,
		events:      events,
		logger:      logger.With("component", "Timelock"),
	}

	c.setupRole(models.RoleAdmin, address)
	if cfg.Admin != (common.Address{}) {
		c.setupRole(models.RoleAdmin, cfg.Admin)
	}
	for _, p := range cfg.Proposers {
		c.setupRole(models.RoleProposer, p)
		c.setupRole(models.RoleCanceller, p)
	}
	for _, e := range cfg.Executors {
		c.setupRole(models.RoleExecutor, e)
	}
	c.events.Emit(&domain.MinDelayChangeEvent{OldDuration: 0, NewDuration: cfg.MinDelay})

	router.Register(address, c)
	return c
}

func (c *Controller) Address() common.Address { return c.address }
func (c *Controller) MinDelay() uint64        { return c.minDelay }
func (c *Controller) GracePeriod() uint64     { return c.gracePeriod }
func (c *Controller) Roles() *RoleTable       { return c.roles }

// HasRole reports whether account holds role
func (c *Controller) HasRole(role models.Role, account common.Address) bool {
	return c.roles.Has(role, account)
}

// OperationState computes the state of id at the current time
func (c *Controller) OperationState(id common.Hash) models.OperationState {
	op, ok := c.operations[id]
	if !ok {
		return models.OperationStateUnset
	}
	switch {
	case op.Done:
		return models.OperationStateDone
	case op.Canceled:
		return models.OperationStateCanceled
	}
	now := c.clock.Now()
	if now < op.ReadyAt {
		return models.OperationStateWaiting
	}
	if c.gracePeriod > 0 && now >= op.ReadyAt+c.gracePeriod {
		return models.OperationStateExpired
	}
	return models.OperationStateReady
}

func (c *Controller) IsOperationPending(id common.Hash) bool {
	return c.OperationState(id).IsPending()
}

func (c *Controller) IsOperationReady(id common.Hash) bool {
	return c.OperationState(id) == models.OperationStateReady
}

func (c *Controller) IsOperationDone(id common.Hash) bool {
	return c.OperationState(id) == models.OperationStateDone
}

// Timestamp returns the ready time of id, zero if it was never admitted
func (c *Controller) Timestamp(id common.Hash) uint64 {
	if op, ok := c.operations[id]; ok {
		return op.ReadyAt
	}
	return 0
}

// Operation returns a copy of the operation record with its computed state
func (c *Controller) Operation(id common.Hash) (*models.OperationView, bool) {
	op, ok := c.operations[id]
	if !ok {
		return nil, false
	}
	cp := *op
	cp.Calls = models.CloneCalls(op.Calls)
	return &models.OperationView{TimelockOperation: cp, State: c.OperationState(id)}, true
}

// Operations returns all operations ordered by admission time
func (c *Controller) Operations() []*models.OperationView {
	out := make([]*models.OperationView, 0, len(c.operations))
	for id := range c.operations {
		v, _ := c.Operation(id)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt != out[j].ScheduledAt {
			return out[i].ScheduledAt < out[j].ScheduledAt
		}
		return out[i].ID.Cmp(out[j].ID) < 0
	})
	return out
}

// Balance returns the native value held by the timelock
func (c *Controller) Balance() *big.Int {
	return c.router.Bank().Balance(c.address)
}

// Deposit credits native value to the timelock treasury
func (c *Controller) Deposit(from common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	c.router.Bank().Credit(c.address, amount)
	c.events.Emit(&domain.NativeDepositEvent{From: from, Amount: new(big.Int).Set(amount)})
}

// Schedule admits a single call
func (c *Controller) Schedule(caller common.Address, call models.Call, predecessor, salt common.Hash, delay uint64) (common.Hash, error) {
	id := HashOperation(call.Target, call.ValueOrZero(), call.Data, predecessor, salt)
	return id, c.schedule("timelock.schedule", caller, id, []models.Call{call}, predecessor, salt, delay)
}

// ScheduleBatch admits a batch of calls as one operation
func (c *Controller) ScheduleBatch(caller common.Address, calls []models.Call, predecessor, salt common.Hash, delay uint64) (common.Hash, error) {
	id := HashOperationBatch(calls, predecessor, salt)
	return id, c.schedule("timelock.scheduleBatch", caller, id, calls, predecessor, salt, delay)
}

func (c *Controller) schedule(op string, caller common.Address, id common.Hash, calls []models.Call, predecessor, salt common.Hash, delay uint64) error {
	if err := c.checkRole(op, models.RoleProposer, caller); err != nil {
		return err
	}
	for i, call := range calls {
		if !call.ValueInRange() {
			return c.reject(domain.NewError(op, domain.ErrInvalidProposal, "call %d: value %s out of uint256 range", i, call.ValueOrZero()))
		}
	}
	if delay < c.minDelay {
		return c.reject(domain.NewError(op, domain.ErrInsufficientDelay, "delay %d < min delay %d", delay, c.minDelay))
	}
	if state := c.OperationState(id); state != models.OperationStateUnset {
		return c.reject(domain.NewError(op, domain.ErrOperationExists, "operation %s is %s", id.Hex(), state))
	}

	now := c.clock.Now()
	c.operations[id] = &models.TimelockOperation{
		ID:          id,
		Calls:       models.CloneCalls(calls),
		Predecessor: predecessor,
		Salt:        salt,
		Delay:       delay,
		ScheduledAt: now,
		ReadyAt:     now + delay,
	}
	for i, call := range calls {
		c.events.Emit(&domain.CallScheduledEvent{OperationID: id, Index: i, Call: call, Predecessor: predecessor, Delay: delay})
	}
	c.logger.Debug("operation scheduled", "id", id.Hex(), "calls", len(calls), "readyAt", now+delay)
	return nil
}

// Execute runs a single-call operation
func (c *Controller) Execute(ctx context.Context, caller common.Address, call models.Call, predecessor, salt common.Hash) (common.Hash, error) {
	id := HashOperation(call.Target, call.ValueOrZero(), call.Data, predecessor, salt)
	return id, c.execute(ctx, "timelock.execute", caller, id, []models.Call{call}, predecessor)
}

// ExecuteBatch runs a batch operation. On failure the operation stays pending.
func (c *Controller) ExecuteBatch(ctx context.Context, caller common.Address, calls []models.Call, predecessor, salt common.Hash) (common.Hash, error) {
	id := HashOperationBatch(calls, predecessor, salt)
	return id, c.execute(ctx, "timelock.executeBatch", caller, id, calls, predecessor)
}

func (c *Controller) execute(ctx context.Context, op string, caller common.Address, id common.Hash, calls []models.Call, predecessor common.Hash) error {
	if !c.roles.Has(models.RoleExecutor, models.AnyAccount) {
		if err := c.checkRole(op, models.RoleExecutor, caller); err != nil {
			return err
		}
	}
	if err := c.checkReady(op, id); err != nil {
		return err
	}
	if predecessor != (common.Hash{}) && !c.IsOperationDone(predecessor) {
		return c.reject(domain.NewError(op, domain.ErrMissingDependency, "predecessor %s", predecessor.Hex()))
	}

	var executed []domain.ParsedEvent
	err := c.router.ExecuteBatch(ctx, c.address, calls, func(i int, call models.Call) {
		executed = append(executed, &domain.CallExecutedEvent{OperationID: id, Index: i, Call: call})
	})
	if err != nil {
		return c.reject(err)
	}
	// a call in the batch may have cancelled the operation
	if err := c.checkReady(op, id); err != nil {
		return err
	}

	c.operations[id].Done = true
	for _, e := range executed {
		c.events.Emit(e)
	}
	c.logger.Debug("operation executed", "id", id.Hex())
	return nil
}

func (c *Controller) checkReady(op string, id common.Hash) error {
	switch state := c.OperationState(id); state {
	case models.OperationStateReady:
		return nil
	case models.OperationStateWaiting:
		return c.reject(domain.NewError(op, domain.ErrOperationNotReady, "ready at %d, now %d", c.Timestamp(id), c.clock.Now()))
	case models.OperationStateExpired:
		return c.reject(domain.NewError(op, domain.ErrOperationExpired, "operation %s", id.Hex()))
	default:
		return c.reject(domain.NewError(op, domain.ErrOperationNotPending, "operation %s is %s", id.Hex(), state))
	}
}

// Cancel discards a pending operation. Cancelled operations cannot be admitted again.
func (c *Controller) Cancel(caller common.Address, id common.Hash) error {
	const op = "timelock.cancel"
	if err := c.checkRole(op, models.RoleCanceller, caller); err != nil {
		return err
	}
	if state := c.OperationState(id); !state.IsPending() {
		return c.reject(domain.NewError(op, domain.ErrOperationNotPending, "operation %s is %s", id.Hex(), state))
	}
	c.operations[id].Canceled = true
	c.events.Emit(&domain.OperationCancelledEvent{OperationID: id})
	c.logger.Debug("operation cancelled", "id", id.Hex())
	return nil
}

// UpdateDelay changes the minimum delay. Only the timelock itself may call it,
// so a change has to pass through schedule and execute.
func (c *Controller) UpdateDelay(caller common.Address, newDelay uint64) error {
	const op = "timelock.updateDelay"
	if caller != c.address {
		return c.reject(domain.NewError(op, domain.ErrUnauthorizedCaller, "caller %s", caller.Hex()))
	}
	c.events.Emit(&domain.MinDelayChangeEvent{OldDuration: c.minDelay, NewDuration: newDelay})
	c.minDelay = newDelay
	return nil
}

// GrantRole gives role to account. The caller must hold the admin role.
func (c *Controller) GrantRole(caller common.Address, role models.Role, account common.Address) error {
	if err := c.checkRole("timelock.grantRole", c.roles.AdminOf(role), caller); err != nil {
		return err
	}
	if c.roles.grant(role, account) {
		c.events.Emit(&domain.RoleGrantedEvent{Role: role, Account: account, Sender: caller})
	}
	return nil
}

// RevokeRole removes role from account. The caller must hold the admin role.
func (c *Controller) RevokeRole(caller common.Address, role models.Role, account common.Address) error {
	if err := c.checkRole("timelock.revokeRole", c.roles.AdminOf(role), caller); err != nil {
		return err
	}
	c.revoke(role, account, caller)
	return nil
}

// RenounceRole drops the caller's own role. Renouncing the last admin is allowed.
func (c *Controller) RenounceRole(caller common.Address, role models.Role, confirmation common.Address) error {
	if caller != confirmation {
		return c.reject(domain.NewError("timelock.renounceRole", domain.ErrBadConfirmation, "caller %s", caller.Hex()))
	}
	c.revoke(role, confirmation, caller)
	return nil
}

func (c *Controller) revoke(role models.Role, account, sender common.Address) {
	if c.roles.revoke(role, account) {
		c.events.Emit(&domain.RoleRevokedEvent{Role: role, Account: account, Sender: sender})
	}
}

func (c *Controller) setupRole(role models.Role, account common.Address) {
	if c.roles.grant(role, account) {
		c.events.Emit(&domain.RoleGrantedEvent{Role: role, Account: account, Sender: c.address})
	}
}

func (c *Controller) checkRole(op string, role models.Role, account common.Address) error {
	if c.roles.Has(role, account) {
		return nil
	}
	return c.reject(domain.NewError(op, domain.ErrMissingRole, "%s lacks %s", account.Hex(), role))
}

func (c *Controller) reject(err error) error {
	c.logger.Debug("rejected", "kind", domain.KindOf(err), "error", err)
	return err
}

// Snapshot captures the full controller state
func (c *Controller) Snapshot() func() {
	saved := c.Export()
	return func() { c.Restore(saved) }
}

// Export returns the persisted form
func (c *Controller) Export() State {
	ops := make([]models.TimelockOperation, 0, len(c.operations))
	for _, v := range c.Operations() {
		ops = append(ops, v.TimelockOperation)
	}
	return State{
		MinDelay:    c.minDelay,
		GracePeriod: c.gracePeriod,
		Roles:       c.roles.Export(),
		Operations:  ops,
		Balance:     c.Balance(),
	}
}

// Restore replaces the controller state. The treasury balance is owned by the
// router's bank and restored with it.
func (c *Controller) Restore(s State) {
	c.minDelay = s.MinDelay
	c.gracePeriod = s.GracePeriod
	c.roles.Restore(s.Roles)
	c.operations = make(map[common.Hash]*models.TimelockOperation, len(s.Operations))
	for _, op := range s.Operations {
		cp := op
		cp.Calls = models.CloneCalls(op.Calls)
		c.operations[op.ID] = &cp
	}
}
