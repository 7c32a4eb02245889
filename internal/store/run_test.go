package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reefcore/internal/core"
)

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestRecord("run-1", 1)

	inserted, err := s.WriteRun(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "fixture", run.Scenario)
	assert.Equal(t, "hash-fixture", run.ScenarioHash)
	assert.Equal(t, "digest-run-1", run.Digest)
	assert.Equal(t, []string{"reef", core.ClasticName}, run.Slots)
	assert.Equal(t, 3, run.StepCount)
	assert.Equal(t, 2, run.LayerCount)
	assert.Equal(t, `{"name":"fixture"}`, string(run.ScenarioJSON))
	assert.True(t, rec.CreatedAt.Equal(run.CreatedAt))

	snap, err := s.ReadSnapshot(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Result.Snapshot, snap)
}

func TestWriteRun_DuplicateIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRecord("run-1", 1))
	require.NoError(t, err)

	again := createTestRecord("run-1", 2)
	again.Digest = "other"
	inserted, err := s.WriteRun(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "digest-run-1", run.Digest)
}

func TestWriteRun_RejectsMismatchedLayers(t *testing.T) {
	s := createTestStore(t)
	rec := createTestRecord("run-1", 1)
	rec.Result.Layers = rec.Result.Layers[:1]

	_, err := s.WriteRun(context.Background(), rec)
	assert.Error(t, err)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestWriteRun_RejectsMissingResult(t *testing.T) {
	s := createTestStore(t)
	rec := createTestRecord("run-1", 1)
	rec.Result = nil

	_, err := s.WriteRun(context.Background(), rec)
	assert.Error(t, err)
}

func TestReadLayers(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.WriteRun(ctx, createTestRecord("run-1", 1))
	require.NoError(t, err)

	layers, err := s.ReadLayers(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, layers, 2)

	assert.Equal(t, 0, layers[0].Index)
	assert.Equal(t, 1.5, layers[0].Thickness)
	assert.Equal(t, 0.5, layers[0].Karst)
	assert.Equal(t, []float64{1.25, 0.25}, layers[0].Deposit)
	assert.Equal(t, 0.25, layers[0].Forcing.Clastic)

	assert.Equal(t, 2.0, layers[1].Forcing.Time)
	assert.Equal(t, -1.0, layers[1].Forcing.SeaLevel)
	assert.Equal(t, 0.75, layers[1].Forcing.Karst)
}

func TestReadSteps(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestRecord("run-1", 1)
	_, err := s.WriteRun(ctx, rec)
	require.NoError(t, err)

	steps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Result.Steps, steps)
	assert.Equal(t, core.RegimeKarst, steps[2].Regime)
}

func TestListRuns_WriteOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i, id := range []string{"zeta", "alpha", "mid"} {
		_, err := s.WriteRun(ctx, createTestRecord(id, i))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids)

	byScenario, err := s.FindRunsByScenario(ctx, "hash-fixture")
	require.NoError(t, err)
	assert.Len(t, byScenario, 3)
}

func TestRead_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.ReadRun(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.ReadLayers(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.ReadSteps(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.ReadSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
