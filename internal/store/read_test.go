package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/ir"
	"github.com/roach88/cfdl/internal/testutil"
)

func TestReadBuild_RoundTrip(t *testing.T) {
	clock := testutil.NewFixedClock(time.Time{})
	s := createTestStore(t, clock)
	res := compile(t, dealSource+badWaterfall)
	ctx := context.Background()
	require.NoError(t, s.WriteBuild(ctx, "deal.cfdl", res))

	rec, err := s.ReadBuild(ctx, res.BuildID)
	require.NoError(t, err)

	assert.Equal(t, res.BuildID, rec.ID)
	assert.Equal(t, "deal.cfdl", rec.Source)
	assert.False(t, rec.Success)
	assert.Equal(t, testutil.Epoch, rec.CreatedAt)
	assert.Equal(t, res.Errors, rec.Errors)
	assert.Equal(t, res.Warnings, rec.Warnings)
	assert.Equal(t, len(res.Errors), rec.ErrorCount)
	assert.Equal(t, len(res.Warnings), rec.WarningCount)

	require.Len(t, rec.Nodes, 3)
	for i, n := range res.Nodes {
		got := rec.Nodes[i]
		assert.Equal(t, i+1, got.Seq)
		assert.Equal(t, n.Common().ID, got.NodeID)
		assert.Equal(t, n.Kind().String(), got.Kind)
		assert.Equal(t, n.Common().Valid(), got.Valid)
		assert.Equal(t, ir.MustNodeHash(n), got.Hash)

		want, err := ir.MarshalCanonical(ir.EngineDocument(n))
		require.NoError(t, err)
		stored, err := ir.MarshalCanonical(got.Document)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(stored), "document of %s", got.NodeID)
	}
	assert.False(t, rec.Nodes[2].Valid, "W1 is stored as invalid")
}

func TestReadBuild_NotFound(t *testing.T) {
	s := createTestStore(t, testutil.NewFixedClock(time.Time{}))

	_, err := s.ReadBuild(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBuilds_NewestFirst(t *testing.T) {
	clock := testutil.NewFixedClock(time.Time{})
	s := createTestStore(t, clock)
	ctx := context.Background()

	var ids []string
	for _, src := range []string{dealSource, badWaterfall, dealSource} {
		res := compile(t, src)
		require.NoError(t, s.WriteBuild(ctx, "deal.cfdl", res))
		ids = append(ids, res.BuildID)
		clock.Advance(time.Minute)
	}

	builds, err := s.ListBuilds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, builds, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{builds[0].ID, builds[1].ID, builds[2].ID})
	assert.Nil(t, builds[0].Nodes, "listings carry summaries only")

	limited, err := s.ListBuilds(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
}

func TestListBuilds_Empty(t *testing.T) {
	s := createTestStore(t, testutil.NewFixedClock(time.Time{}))

	builds, err := s.ListBuilds(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, builds)
	assert.Empty(t, builds)
}

func TestNodeHistory_TracksChanges(t *testing.T) {
	clock := testutil.NewFixedClock(time.Time{})
	s := createTestStore(t, clock)
	ctx := context.Background()

	first := compile(t, dealSource)
	require.NoError(t, s.WriteBuild(ctx, "deal.cfdl", first))
	clock.Advance(time.Minute)

	same := compile(t, dealSource)
	require.NoError(t, s.WriteBuild(ctx, "deal.cfdl", same))
	clock.Advance(time.Minute)

	changed := compile(t, `deal D1 {
  name: "Main Deal";
  dealType: development;
  currency: "USD";
  entryDate: "2024-01-01";
  exitDate: "2029-01-01";
  analysisStart: "2024-01-01";
  holdingPeriodYears: 5;
}
`)
	require.NoError(t, s.WriteBuild(ctx, "deal.cfdl", changed))

	history, err := s.NodeHistory(ctx, "D1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, first.BuildID, history[0].BuildID)
	assert.Equal(t, changed.BuildID, history[2].BuildID)
	assert.Equal(t, history[0].Hash, history[1].Hash, "same source, same hash")
	assert.NotEqual(t, history[1].Hash, history[2].Hash)
	assert.Equal(t, "development", history[2].Document.Str("dealType"))
}

func TestNodeHistory_UnknownNode(t *testing.T) {
	s := createTestStore(t, testutil.NewFixedClock(time.Time{}))

	history, err := s.NodeHistory(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}
