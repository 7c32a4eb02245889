package sim

import (
	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/forcing"
)

// StepRecord is what one accretion step did.
type StepRecord struct {
	Step       int         `json:"step"`
	Time       float64     `json:"time"`
	Layer      int         `json:"layer"`
	Top        float64     `json:"top"`
	Regime     core.Regime `json:"regime"`
	Population []float64   `json:"population"`
	Growth     []float64   `json:"growth"`
	SeaLevel   float64     `json:"sealevel"`
}

// StepEvent is delivered to observers after each step.
type StepEvent struct {
	StepRecord

	// Thickness is the current thickness of the step's layer.
	Thickness float64 `json:"thickness"`
}

// Result is the outcome of a completed run.
type Result struct {
	Timing Timing

	// Steps holds one record per accretion step, in order.
	Steps []StepRecord

	// Layers holds the environment sampled at each layer's start time.
	Layers []forcing.Sample

	// Snapshot is the final stratigraphic record.
	Snapshot core.Snapshot
}

// Digest returns the content hash of the final record.
func (r *Result) Digest() (string, error) {
	return Digest(r.Snapshot)
}

// RegimeCounts tallies how many steps applied each regime.
func (r *Result) RegimeCounts() map[core.Regime]int {
	counts := make(map[core.Regime]int)
	for _, s := range r.Steps {
		counts[s.Regime]++
	}
	return counts
}

// SnapshotCanonical returns a snapshot as plain values for
// canon.MarshalCanonical.
func SnapshotCanonical(s core.Snapshot) map[string]any {
	return map[string]any{
		"slots":         append([]string(nil), s.Slots...),
		"thickness":     s.Thickness,
		"deposit":       s.Deposit,
		"karst":         s.Karst,
		"top":           s.Top,
		"unmet_erosion": s.UnmetErosion,
	}
}
