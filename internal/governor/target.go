package governor

import (
	"context"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

const settingsABI = `[
	{"type":"function","name":"setVotingDelay","stateMutability":"nonpayable","inputs":[{"name":"newVotingDelay","type":"uint48"}],"outputs":[]},
	{"type":"function","name":"setVotingPeriod","stateMutability":"nonpayable","inputs":[{"name":"newVotingPeriod","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"setProposalThreshold","stateMutability":"nonpayable","inputs":[{"name":"newProposalThreshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"updateQuorumNumerator","stateMutability":"nonpayable","inputs":[{"name":"newQuorumNumerator","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"votingDelay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"votingPeriod","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"proposalThreshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"quorumNumerator","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// ABI is the calldata interface of the governor's own settings
var ABI = dispatch.MustParseABI(settingsABI)

var _ dispatch.Target = (*Governor)(nil)

// Call applies a settings change. Only the timelock may change settings, so
// every change is itself a proposal.
func (g *Governor) Call(_ context.Context, msg dispatch.CallMsg) ([]byte, error) {
	const op = "governor.call"
	method, args, err := dispatch.DecodeCall(ABI, msg.Data)
	if err != nil {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%v", err)
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%s is not payable", method.Name)
	}

	switch method.Name {
	case "votingDelay":
		return method.Outputs.Pack(new(big.Int).SetUint64(g.delay))
	case "votingPeriod":
		return method.Outputs.Pack(new(big.Int).SetUint64(g.period))
	case "proposalThreshold":
		return method.Outputs.Pack(g.threshold.ToBig())
	case "quorumNumerator":
		return method.Outputs.Pack(new(big.Int).SetUint64(g.quorum.Numerator()))
	}

	if msg.From != g.timelock.Address() {
		return nil, g.reject(domain.NewError(op, domain.ErrUnauthorizedCaller, "%s may only be called by the timelock", method.Name))
	}

	switch method.Name {
	case "setVotingDelay":
		// uint48 unpacks into *big.Int
		return nil, g.SetVotingDelay(args[0].(*big.Int).Uint64())
	case "setVotingPeriod":
		return nil, g.SetVotingPeriod(uint64(args[0].(uint32)))
	case "setProposalThreshold":
		v, overflow := uint256.FromBig(args[0].(*big.Int))
		if overflow {
			return nil, domain.NewError(op, domain.ErrCallFailed, "threshold out of range")
		}
		g.SetProposalThreshold(v)
		return nil, nil
	case "updateQuorumNumerator":
		n := args[0].(*big.Int)
		if !n.IsUint64() {
			return nil, domain.NewError(op, domain.ErrCallFailed, "numerator out of range")
		}
		return nil, g.UpdateQuorumNumerator(n.Uint64())
	}
	return nil, domain.NewError(op, domain.ErrCallFailed, "unsupported method %s", method.Name)
}

// SetVotingDelay changes the delay applied to new proposals
func (g *Governor) SetVotingDelay(delay uint64) error {
	if delay > maxVotingDelay {
		return domain.NewError("governor.setVotingDelay", domain.ErrCallFailed, "delay %d exceeds uint48", delay)
	}
	g.settingChanged("votingDelay", strconv.FormatUint(g.delay, 10), strconv.FormatUint(delay, 10))
	g.delay = delay
	return nil
}

// SetVotingPeriod changes the period applied to new proposals
func (g *Governor) SetVotingPeriod(period uint64) error {
	if period == 0 || period > maxVotingPeriod {
		return domain.NewError("governor.setVotingPeriod", domain.ErrCallFailed, "invalid voting period %d", period)
	}
	g.settingChanged("votingPeriod", strconv.FormatUint(g.period, 10), strconv.FormatUint(period, 10))
	g.period = period
	return nil
}

// SetProposalThreshold changes the power required to propose
func (g *Governor) SetProposalThreshold(threshold *uint256.Int) {
	g.settingChanged("proposalThreshold", g.threshold.Dec(), threshold.Dec())
	g.threshold = new(uint256.Int).Set(threshold)
}

// UpdateQuorumNumerator changes the quorum fraction for snapshots from now on
func (g *Governor) UpdateQuorumNumerator(numerator uint64) error {
	old, err := g.quorum.UpdateNumerator(numerator, g.clock.Ordinal())
	if err != nil {
		return domain.NewError("governor.updateQuorumNumerator", domain.ErrCallFailed, "%v", err)
	}
	g.settingChanged("quorumNumerator", strconv.FormatUint(old, 10), strconv.FormatUint(numerator, 10))
	return nil
}

func (g *Governor) settingChanged(setting, oldValue, newValue string) {
	g.events.Emit(&domain.GovernorSettingChangedEvent{Setting: setting, OldValue: oldValue, NewValue: newValue})
	g.logger.Debug("setting changed", "setting", setting, "old", oldValue, "new", newValue)
}

// SetVotingDelayCalldata encodes setVotingDelay(delay)
func SetVotingDelayCalldata(delay uint64) ([]byte, error) {
	return ABI.Pack("setVotingDelay", new(big.Int).SetUint64(delay))
}

// SetVotingPeriodCalldata encodes setVotingPeriod(period)
func SetVotingPeriodCalldata(period uint32) ([]byte, error) {
	return ABI.Pack("setVotingPeriod", period)
}

// UpdateQuorumNumeratorCalldata encodes updateQuorumNumerator(numerator)
func UpdateQuorumNumeratorCalldata(numerator uint64) ([]byte, error) {
	return ABI.Pack("updateQuorumNumerator", new(big.Int).SetUint64(numerator))
}
