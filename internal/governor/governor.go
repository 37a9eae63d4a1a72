// Package governor implements the proposal state machine. Proposal state is
// derived on every read from the clock, the tally and the timelock's view of
// the proposal's operation.
package governor

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/tally"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
)

// VotesSource answers historical voting power
type VotesSource interface {
	tally.SupplySource
	PowerAt(account common.Address, ordinal uint64) (*uint256.Int, error)
}

// Timelock is the execution queue the governor hands succeeded proposals to
type Timelock interface {
	Address() common.Address
	MinDelay() uint64
	HasRole(role models.Role, account common.Address) bool
	ScheduleBatch(caller common.Address, calls []models.Call, predecessor, salt common.Hash, delay uint64) (common.Hash, error)
	ExecuteBatch(ctx context.Context, caller common.Address, calls []models.Call, predecessor, salt common.Hash) (common.Hash, error)
	OperationState(id common.Hash) models.OperationState
	Timestamp(id common.Hash) uint64
}

type proposalRecord struct {
	models.Proposal
	votes *models.Tally
}

// Governor owns the proposal records
type Governor struct {
	address   common.Address
	name      string
	delay     uint64
	period    uint64
	threshold *uint256.Int
	quorum    *tally.QuorumFraction
	counter   tally.Counter
	votes     VotesSource
	timelock  Timelock
	clock     clock.Clock
	proposals map[common.Hash]*proposalRecord
	events    domain.EventSink
	logger    *slog.Logger
}

// ProposalRecord is the persisted form of one proposal
type ProposalRecord struct {
	models.Proposal
	Votes *models.Tally `json:"votes"`
}

// State is the persisted form of a Governor
type State struct {
	Settings  Settings          `json:"settings"`
	Quorum    tally.QuorumState `json:"quorum"`
	Proposals []ProposalRecord  `json:"proposals"`
}

// Option customises a Governor
type Option func(*Governor)

// WithCounter replaces the default SimpleCounting strategy
func WithCounter(c tally.Counter) Option {
	return func(g *Governor) { g.counter = c }
}

// WithEvents sets the event sink
func WithEvents(events domain.EventSink) Option {
	return func(g *Governor) { g.events = events }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Governor) { g.logger = logger }
}

// New creates a governor at address
func New(address common.Address, settings Settings, votes VotesSource, tl Timelock, clk clock.Clock, opts ...Option) (*Governor, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	quorum, err := tally.NewQuorumFraction(settings.QuorumNumerator, settings.QuorumDenominator)
	if err != nil {
		return nil, err
	}
	g := &Governor{
		address:   address,
		name:      settings.Name,
		delay:     settings.VotingDelay,
		period:    settings.VotingPeriod,
		threshold: thresholdOrZero(settings.ProposalThreshold),
		quorum:    quorum,
		counter:   tally.SimpleCounting{},
		votes:     votes,
		timelock:  tl,
		clock:     clk,
		proposals: make(map[common.Hash]*proposalRecord),
		events:    domain.NopSink{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "Governor")
	return g, nil
}

func (g *Governor) Address() common.Address   { return g.address }
func (g *Governor) Name() string              { return g.name }
func (g *Governor) VotingDelay() uint64       { return g.delay }
func (g *Governor) VotingPeriod() uint64      { return g.period }
func (g *Governor) Counter() tally.Counter    { return g.counter }
func (g *Governor) Timelock() common.Address  { return g.timelock.Address() }
func (g *Governor) ClockMode() clock.Mode     { return g.clock.Mode() }
func (g *Governor) QuorumNumerator() uint64   { return g.quorum.Numerator() }
func (g *Governor) QuorumDenominator() uint64 { return g.quorum.Denominator() }

func (g *Governor) ProposalThreshold() *uint256.Int {
	return new(uint256.Int).Set(g.threshold)
}

// Settings returns the settings currently in force
func (g *Governor) Settings() Settings {
	return Settings{
		Name:              g.name,
		VotingDelay:       g.delay,
		VotingPeriod:      g.period,
		ProposalThreshold: g.ProposalThreshold(),
		QuorumNumerator:   g.quorum.Numerator(),
		QuorumDenominator: g.quorum.Denominator(),
	}
}

// Quorum returns the quorum required for a snapshot at ordinal
func (g *Governor) Quorum(ordinal uint64) (*uint256.Int, error) {
	return g.quorum.QuorumAt(g.votes, ordinal)
}

// Propose records a new proposal and returns its id
func (g *Governor) Propose(proposer common.Address, calls []models.Call, description string) (common.Hash, error) {
	const op = "governor.propose"
	if len(calls) == 0 {
		return common.Hash{}, g.reject(domain.NewError(op, domain.ErrInvalidProposal, "empty proposal"))
	}
	if restricted, ok := restrictedProposer(description); ok && restricted != proposer {
		return common.Hash{}, g.reject(domain.NewError(op, domain.ErrRestrictedProposer, "proposer %s", proposer.Hex()))
	}

	if err := validateValues(op, calls); err != nil {
		return common.Hash{}, g.reject(err)
	}

	now := g.clock.Ordinal()
	if !g.threshold.IsZero() {
		// the current ordinal is still open, so power is read at the previous one
		power := new(uint256.Int)
		if now > 0 {
			var err error
			if power, err = g.votes.PowerAt(proposer, now-1); err != nil {
				return common.Hash{}, g.reject(err)
			}
		}
		if power.Lt(g.threshold) {
			return common.Hash{}, g.reject(domain.NewError(op, domain.ErrInsufficientProposerVotes,
				"votes %s < threshold %s", power.Dec(), g.threshold.Dec()))
		}
	}

	descHash := DescriptionHash(description)
	id := HashProposal(calls, descHash)
	if _, exists := g.proposals[id]; exists {
		return common.Hash{}, g.reject(domain.NewError(op, domain.ErrProposalExists, "proposal %s", id.Hex()))
	}

	rec := &proposalRecord{
		Proposal: models.Proposal{
			ID:              id,
			Proposer:        proposer,
			Calls:           models.CloneCalls(calls),
			Description:     description,
			DescriptionHash: descHash,
			CreatedAt:       now,
			VoteStart:       now + g.delay,
			VoteDuration:    g.period,
		},
		votes: models.NewTally(),
	}
	g.proposals[id] = rec

	g.events.Emit(&domain.ProposalCreatedEvent{
		ProposalID:  id,
		Proposer:    proposer,
		Calls:       models.CloneCalls(calls),
		VoteStart:   rec.Snapshot(),
		VoteEnd:     rec.Deadline(),
		Description: description,
	})
	g.logger.Debug("proposal created", "id", id.Hex(), "snapshot", rec.Snapshot(), "deadline", rec.Deadline())
	return id, nil
}

// CastVote records support with the voter's power at the proposal snapshot
func (g *Governor) CastVote(voter common.Address, id common.Hash, support models.VoteType) (*uint256.Int, error) {
	return g.CastVoteWithReason(voter, id, support, "")
}

// CastVoteWithReason is CastVote with a free-form reason carried on the event
func (g *Governor) CastVoteWithReason(voter common.Address, id common.Hash, support models.VoteType, reason string) (*uint256.Int, error) {
	const op = "governor.castVote"
	rec, err := g.proposal(op, id)
	if err != nil {
		return nil, err
	}
	if state := g.stateOf(rec); state != models.ProposalStateActive {
		return nil, g.reject(domain.NewError(op, domain.ErrVoteNotActive, "proposal %s is %s", id.Hex(), state))
	}

	weight, err := g.votes.PowerAt(voter, rec.Snapshot())
	if err != nil {
		return nil, g.reject(err)
	}
	if err := g.counter.CountVote(rec.votes, voter, support, weight); err != nil {
		return nil, g.reject(err)
	}

	g.events.Emit(&domain.VoteCastEvent{
		Voter:      voter,
		ProposalID: id,
		Support:    support,
		Weight:     new(uint256.Int).Set(weight),
		Reason:     reason,
	})
	g.logger.Debug("vote cast", "id", id.Hex(), "voter", voter.Hex(), "support", support, "weight", weight.Dec())
	return weight, nil
}

// Queue admits a succeeded proposal to the timelock and returns the operation id
func (g *Governor) Queue(id common.Hash) (common.Hash, error) {
	const op = "governor.queue"
	rec, err := g.proposal(op, id)
	if err != nil {
		return common.Hash{}, err
	}
	if err := g.requireState(op, rec, models.ProposalStateSucceeded); err != nil {
		return common.Hash{}, err
	}

	salt := TimelockSalt(g.address, rec.DescriptionHash)
	opID, err := g.timelock.ScheduleBatch(g.address, rec.Calls, common.Hash{}, salt, g.timelock.MinDelay())
	if err != nil {
		return common.Hash{}, g.reject(err)
	}

	eta := g.timelock.Timestamp(opID)
	g.events.Emit(&domain.ProposalQueuedEvent{ProposalID: id, OperationID: opID, ETA: eta})
	g.logger.Debug("proposal queued", "id", id.Hex(), "operation", opID.Hex(), "eta", eta)
	return opID, nil
}

// Execute runs a queued proposal through the timelock on behalf of caller
func (g *Governor) Execute(ctx context.Context, caller common.Address, id common.Hash) error {
	const op = "governor.execute"
	rec, err := g.proposal(op, id)
	if err != nil {
		return err
	}
	if err := g.requireState(op, rec, models.ProposalStateQueued); err != nil {
		return err
	}

	salt := TimelockSalt(g.address, rec.DescriptionHash)
	if _, err := g.timelock.ExecuteBatch(ctx, caller, rec.Calls, common.Hash{}, salt); err != nil {
		return g.reject(err)
	}

	g.events.Emit(&domain.ProposalExecutedEvent{ProposalID: id})
	g.logger.Debug("proposal executed", "id", id.Hex())
	return nil
}

// Cancel marks a proposal canceled. While pending the proposer or a timelock
// canceller may cancel it, while active only a canceller may.
func (g *Governor) Cancel(caller common.Address, id common.Hash) error {
	const op = "governor.cancel"
	rec, err := g.proposal(op, id)
	if err != nil {
		return err
	}

	isCanceller := g.timelock.HasRole(models.RoleCanceller, caller)
	switch state := g.stateOf(rec); state {
	case models.ProposalStatePending:
		if caller != rec.Proposer && !isCanceller {
			return g.reject(domain.NewError(op, domain.ErrUnauthorizedCaller, "caller %s", caller.Hex()))
		}
	case models.ProposalStateActive:
		if !isCanceller {
			return g.reject(domain.NewError(op, domain.ErrMissingRole, "%s lacks %s", caller.Hex(), models.RoleCanceller))
		}
	default:
		return g.reject(domain.NewError(op, domain.ErrUnexpectedProposalState, "proposal %s is %s", id.Hex(), state))
	}

	rec.Canceled = true
	g.events.Emit(&domain.ProposalCanceledEvent{ProposalID: id, Canceller: caller})
	g.logger.Debug("proposal canceled", "id", id.Hex(), "by", caller.Hex())
	return nil
}

// State computes the current state of a proposal
func (g *Governor) State(id common.Hash) (models.ProposalState, error) {
	rec, err := g.proposal("governor.state", id)
	if err != nil {
		return "", err
	}
	return g.stateOf(rec), nil
}

func (g *Governor) stateOf(rec *proposalRecord) models.ProposalState {
	if rec.Canceled {
		return models.ProposalStateCanceled
	}
	// power at the snapshot is final only once the snapshot ordinal has passed
	now := g.clock.Ordinal()
	if now <= rec.Snapshot() {
		return models.ProposalStatePending
	}
	if now <= rec.Deadline() {
		return models.ProposalStateActive
	}

	switch g.timelock.OperationState(g.operationID(rec)) {
	case models.OperationStateDone:
		return models.ProposalStateExecuted
	case models.OperationStateWaiting, models.OperationStateReady:
		return models.ProposalStateQueued
	case models.OperationStateExpired:
		return models.ProposalStateExpired
	case models.OperationStateCanceled:
		return models.ProposalStateCanceled
	}

	quorum, err := g.Quorum(rec.Snapshot())
	if err != nil {
		// the snapshot is in the past, lookups cannot fail
		g.logger.Error("quorum lookup failed", "id", rec.ID.Hex(), "error", err)
		return models.ProposalStateDefeated
	}
	if tally.Succeeded(g.counter, rec.votes, quorum) {
		return models.ProposalStateSucceeded
	}
	return models.ProposalStateDefeated
}

func (g *Governor) requireState(op string, rec *proposalRecord, want models.ProposalState) error {
	if state := g.stateOf(rec); state != want {
		return g.reject(domain.NewError(op, domain.ErrUnexpectedProposalState,
			"proposal %s is %s, expected %s", rec.ID.Hex(), state, want))
	}
	return nil
}

func (g *Governor) proposal(op string, id common.Hash) (*proposalRecord, error) {
	rec, ok := g.proposals[id]
	if !ok {
		return nil, g.reject(domain.NewError(op, domain.ErrUnknownProposal, "proposal %s", id.Hex()))
	}
	return rec, nil
}

func (g *Governor) operationID(rec *proposalRecord) common.Hash {
	return timelock.HashOperationBatch(rec.Calls, common.Hash{}, TimelockSalt(g.address, rec.DescriptionHash))
}

func (g *Governor) reject(err error) error {
	g.logger.Debug("rejected", "kind", domain.KindOf(err), "error", err)
	return err
}

// HasVoted reports whether account has voted on id
func (g *Governor) HasVoted(id common.Hash, account common.Address) bool {
	rec, ok := g.proposals[id]
	return ok && rec.votes.Voters[account]
}

// ProposalVotes returns a copy of the tally of id
func (g *Governor) ProposalVotes(id common.Hash) (*models.Tally, error) {
	rec, err := g.proposal("governor.proposalVotes", id)
	if err != nil {
		return nil, err
	}
	return rec.votes.Clone(), nil
}

// ProposalETA returns the time the proposal's operation becomes executable, zero if not queued
func (g *Governor) ProposalETA(id common.Hash) uint64 {
	rec, ok := g.proposals[id]
	if !ok {
		return 0
	}
	return g.timelock.Timestamp(g.operationID(rec))
}

// ProposalNeedsQueuing is always true, every proposal runs through the timelock
func (g *Governor) ProposalNeedsQueuing(common.Hash) bool {
	return true
}

// Proposal returns the externally observable view of id
func (g *Governor) Proposal(id common.Hash) (*models.ProposalView, error) {
	rec, err := g.proposal("governor.proposal", id)
	if err != nil {
		return nil, err
	}
	return g.view(rec), nil
}

// Proposals returns every proposal ordered by creation
func (g *Governor) Proposals() []*models.ProposalView {
	out := make([]*models.ProposalView, 0, len(g.proposals))
	for _, rec := range g.proposals {
		out = append(out, g.view(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID.Cmp(out[j].ID) < 0
	})
	return out
}

// FindProposals returns the ids whose hex form starts with prefix
func (g *Governor) FindProposals(prefix string) []common.Hash {
	prefix = strings.ToLower(prefix)
	if !strings.HasPrefix(prefix, "0x") {
		prefix = "0x" + prefix
	}
	var out []common.Hash
	for id := range g.proposals {
		if strings.HasPrefix(id.Hex(), prefix) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func (g *Governor) view(rec *proposalRecord) *models.ProposalView {
	p := rec.Proposal
	p.Calls = models.CloneCalls(rec.Calls)
	v := &models.ProposalView{
		Proposal:    p,
		State:       g.stateOf(rec),
		Votes:       rec.votes.Clone(),
		OperationID: g.operationID(rec),
	}
	if q, err := g.Quorum(rec.Snapshot()); err == nil {
		v.Quorum = q
	}
	v.ETA = g.timelock.Timestamp(v.OperationID)
	return v
}

// Snapshot captures settings and proposals
func (g *Governor) Snapshot() func() {
	saved := g.Export()
	return func() {
		// restoring a state exported from this governor cannot fail
		_ = g.Restore(saved)
	}
}

// Export returns the persisted form
func (g *Governor) Export() State {
	recs := make([]ProposalRecord, 0, len(g.proposals))
	for _, v := range g.Proposals() {
		rec := g.proposals[v.ID]
		p := rec.Proposal
		p.Calls = models.CloneCalls(rec.Calls)
		recs = append(recs, ProposalRecord{Proposal: p, Votes: rec.votes.Clone()})
	}
	return State{Settings: g.Settings(), Quorum: g.quorum.Export(), Proposals: recs}
}

// Restore replaces the governor state
func (g *Governor) Restore(s State) error {
	if err := s.Settings.Validate(); err != nil {
		return err
	}
	if err := g.quorum.Restore(s.Quorum); err != nil {
		return err
	}
	g.name = s.Settings.Name
	g.delay = s.Settings.VotingDelay
	g.period = s.Settings.VotingPeriod
	g.threshold = thresholdOrZero(s.Settings.ProposalThreshold)
	g.proposals = make(map[common.Hash]*proposalRecord, len(s.Proposals))
	for _, r := range s.Proposals {
		p := r.Proposal
		p.Calls = models.CloneCalls(r.Calls)
		votes := models.NewTally()
		if r.Votes != nil {
			votes = r.Votes.Clone()
		}
		g.proposals[p.ID] = &proposalRecord{Proposal: p, votes: votes}
	}
	return nil
}

func validateValues(op string, calls []models.Call) error {
	for i, c := range calls {
		if !c.ValueInRange() {
			return domain.NewError(op, domain.ErrInvalidProposal, "call %d: value %s out of uint256 range", i, c.ValueOrZero())
		}
	}
	return nil
}

func thresholdOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
