package store

import (
	"errors"
	"time"

	"github.com/roach88/reefcore/internal/forcing"
	"github.com/roach88/reefcore/internal/sim"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is the header of a stored run.
type Run struct {
	ID           string    `json:"id"`
	Scenario     string    `json:"scenario"`
	ScenarioHash string    `json:"scenario_hash"`
	Digest       string    `json:"digest"`
	Slots        []string  `json:"slots"`
	StepCount    int       `json:"step_count"`
	LayerCount   int       `json:"layer_count"`
	Top          float64   `json:"top"`
	UnmetErosion float64   `json:"unmet_erosion"`
	CreatedAt    time.Time `json:"created_at"`

	// ScenarioJSON is the canonical JSON of the scenario that produced
	// the run. Replays decode it with scenario.Parse.
	ScenarioJSON []byte `json:"-"`
}

// RunRecord is everything WriteRun persists for one run.
type RunRecord struct {
	Run
	Result *sim.Result
}

// Layer is one stored stratigraphic layer with the forcing sampled at its
// start time.
type Layer struct {
	Index     int            `json:"layer"`
	Thickness float64        `json:"thickness"`
	Karst     float64        `json:"karst"`
	Deposit   []float64      `json:"deposit"`
	Forcing   forcing.Sample `json:"forcing"`
}
