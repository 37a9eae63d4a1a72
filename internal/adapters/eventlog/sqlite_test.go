package eventlog_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/adapters/eventlog"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

var (
	proposalA = common.HexToHash("0xAA")
	proposalB = common.HexToHash("0xBB")
	voter     = common.HexToAddress("0xA000000000000000000000000000000000000001")
)

func newStore(t *testing.T) *eventlog.Store {
	t.Helper()
	store, err := eventlog.NewStore(&config.RuntimeConfig{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleEvents() []domain.EventEnvelope {
	return []domain.EventEnvelope{
		{Seq: 1, Ordinal: 10, Timestamp: 100, Event: &domain.ProposalCreatedEvent{ProposalID: proposalA, Proposer: voter, VoteStart: 11, VoteEnd: 15, Description: "a"}},
		{Seq: 2, Ordinal: 12, Timestamp: 124, Event: &domain.VoteCastEvent{Voter: voter, ProposalID: proposalA, Support: models.VoteFor, Weight: uint256.NewInt(100)}},
		{Seq: 3, Ordinal: 12, Timestamp: 124, Event: &domain.ProposalCreatedEvent{ProposalID: proposalB, Proposer: voter, VoteStart: 13, VoteEnd: 17, Description: "b"}},
		{Seq: 4, Ordinal: 20, Timestamp: 220, Event: &domain.ValueStoredEvent{Target: voter, Value: big.NewInt(42)}},
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("publish and list", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Publish(ctx, sampleEvents()))

		all, err := store.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, sampleEvents(), all)
	})

	t.Run("republishing is idempotent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Publish(ctx, sampleEvents()[:2]))
		require.NoError(t, store.Publish(ctx, sampleEvents()))

		all, err := store.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("filters", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Publish(ctx, sampleEvents()))

		tests := []struct {
			name     string
			filter   domain.EventFilter
			wantSeqs []uint64
		}{
			{name: "by name", filter: domain.EventFilter{Name: "ProposalCreated"}, wantSeqs: []uint64{1, 3}},
			{name: "by proposal", filter: domain.EventFilter{ProposalID: proposalA.Hex()}, wantSeqs: []uint64{1, 2}},
			{name: "after seq", filter: domain.EventFilter{AfterSeq: 2}, wantSeqs: []uint64{3, 4}},
			{name: "limit", filter: domain.EventFilter{Limit: 1}, wantSeqs: []uint64{1}},
			{name: "no match", filter: domain.EventFilter{Name: "RoleGranted"}, wantSeqs: []uint64{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := store.List(ctx, tt.filter)
				require.NoError(t, err)
				seqs := make([]uint64, len(got))
				for i, e := range got {
					seqs[i] = e.Seq
				}
				assert.Equal(t, tt.wantSeqs, seqs)
			})
		}
	})

	t.Run("reset", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Publish(ctx, sampleEvents()))
		require.NoError(t, store.Reset(ctx))

		all, err := store.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
