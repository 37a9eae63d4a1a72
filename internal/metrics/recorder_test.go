package metrics_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/metrics"
)

var (
	deployer = common.HexToAddress("0xD000000000000000000000000000000000000001")
	voter    = common.HexToAddress("0xA000000000000000000000000000000000000001")
)

func TestRecorderPublish(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	ctx := context.Background()

	batch := []domain.EventEnvelope{
		{Seq: 1, Event: &domain.VoteCastEvent{Voter: voter, Support: models.VoteFor, Weight: uint256.NewInt(1)}},
		{Seq: 2, Event: &domain.VoteCastEvent{Voter: voter, Support: models.VoteAgainst, Weight: uint256.NewInt(1)}},
		{Seq: 3, Event: &domain.ValueStoredEvent{Target: voter, Value: big.NewInt(1)}},
	}
	require.NoError(t, rec.Publish(ctx, batch))
	// replayed events are not counted twice
	require.NoError(t, rec.Publish(ctx, batch[1:]))

	assert.Equal(t, uint64(3), rec.LastSeq())

	expected := `
# HELP trebgov_events_total number of governance events observed, by event name
# TYPE trebgov_events_total counter
trebgov_events_total{event="ValueStored"} 1
trebgov_events_total{event="VoteCast"} 2
`
	reg := prometheus.NewRegistry()
	rec2 := metrics.NewRecorder(reg)
	require.NoError(t, rec2.Publish(ctx, batch))
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "trebgov_events_total"))

	votes := `
# HELP trebgov_votes_total number of votes cast, by support
# TYPE trebgov_votes_total counter
trebgov_votes_total{support="against"} 1
trebgov_votes_total{support="for"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(votes), "trebgov_votes_total"))
}

func TestRecorderObserve(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	clk := clock.NewManual(1, 1_700_000_000, 12)
	sys, err := governance.New(governance.DefaultConfig(deployer), clk, governance.WithSubscriber(rec))
	require.NoError(t, err)
	require.NoError(t, sys.Deploy(ctx))
	require.NoError(t, sys.Mint(ctx, deployer, voter, uint256.NewInt(100)))
	require.NoError(t, sys.Delegate(ctx, voter, voter))
	require.NoError(t, sys.Mine(1))

	data, err := box.StoreCalldata(big.NewInt(7))
	require.NoError(t, err)
	_, err = sys.Propose(ctx, voter, []models.Call{{Target: sys.Addresses().Box, Value: new(big.Int), Data: data}}, "store 7")
	require.NoError(t, err)

	rec.Observe(sys)

	expected := `
# HELP trebgov_proposals number of proposals in each state
# TYPE trebgov_proposals gauge
trebgov_proposals{state="active"} 0
trebgov_proposals{state="canceled"} 0
trebgov_proposals{state="defeated"} 0
trebgov_proposals{state="executed"} 0
trebgov_proposals{state="expired"} 0
trebgov_proposals{state="pending"} 1
trebgov_proposals{state="queued"} 0
trebgov_proposals{state="succeeded"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "trebgov_proposals"))

	clockOrdinal := `
# HELP trebgov_clock_ordinal current clock ordinal (block number or timestamp)
# TYPE trebgov_clock_ordinal gauge
trebgov_clock_ordinal 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(clockOrdinal), "trebgov_clock_ordinal"))

	count, err := testutil.GatherAndCount(reg, "trebgov_events_total")
	require.NoError(t, err)
	assert.Positive(t, count)
	assert.Positive(t, rec.LastSeq())
}
