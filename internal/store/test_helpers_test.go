package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/forcing"
	"github.com/roach88/reefcore/internal/sim"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord builds a two-layer, one-species run with three steps.
func createTestRecord(id string, seq int) RunRecord {
	return RunRecord{
		Run: Run{
			ID:           id,
			Scenario:     "fixture",
			ScenarioHash: "hash-fixture",
			ScenarioJSON: []byte(`{"name":"fixture"}`),
			Digest:       "digest-" + id,
			CreatedAt:    time.Date(2026, 1, 1, 0, 0, seq, 0, time.UTC),
		},
		Result: &sim.Result{
			Timing: sim.Timing{Start: 0, Step: 1, StepCount: 3, StepsPerLayer: 2, LayerSpan: 2},
			Steps: []sim.StepRecord{
				{Step: 0, Time: 0, Layer: 0, Top: 1.5, Regime: core.RegimeOpen, Population: []float64{1}, Growth: []float64{1}},
				{Step: 1, Time: 1, Layer: 0, Top: 0, Regime: core.RegimeCarbonateFill, Population: []float64{1}, Growth: []float64{1}, SeaLevel: 0.5},
				{Step: 2, Time: 2, Layer: 1, Top: -0.25, Regime: core.RegimeKarst, Population: []float64{2}, Growth: []float64{-1}, SeaLevel: -1},
			},
			Layers: []forcing.Sample{
				{Time: 0, SeaLevel: 0, Tectonic: 0.125, Clastic: 0.25, Flow: 0.5, Karst: 0},
				{Time: 2, SeaLevel: -1, Tectonic: 0.125, Clastic: 0, Flow: 0.5, Karst: 0.75},
			},
			Snapshot: core.Snapshot{
				Slots:        []string{"reef", core.ClasticName},
				Thickness:    []float64{1.5, 0},
				Deposit:      [][]float64{{1.25, 0}, {0.25, 0}},
				Karst:        []float64{0.5, 0},
				Top:          -0.25,
				UnmetErosion: 0.125,
			},
		},
	}
}
