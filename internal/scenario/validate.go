package scenario

import (
	"fmt"
	"math"

	"github.com/roach88/reefcore/internal/core"
)

// stepTolerance bounds how far layer/step may sit from a whole number.
const stepTolerance = 1e-9

// Validate checks that the scenario describes a runnable simulation.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	t := s.Time
	if !(t.End > t.Start) {
		return fmt.Errorf("time.end (%v) must be after time.start (%v)", t.End, t.Start)
	}
	if !(t.Step > 0) {
		return fmt.Errorf("time.step must be positive")
	}
	if !(t.Layer > 0) {
		return fmt.Errorf("time.layer must be positive")
	}
	if t.End-t.Start < t.Step {
		return fmt.Errorf("time span %v is shorter than one step (%v)", t.End-t.Start, t.Step)
	}
	ratio := t.Layer / t.Step
	if ratio < 1-stepTolerance || math.Abs(ratio-math.Round(ratio)) > stepTolerance {
		return fmt.Errorf("time.layer (%v) must be a whole multiple of time.step (%v)", t.Layer, t.Step)
	}

	if len(s.Species) == 0 {
		return fmt.Errorf("species list is required and must be non-empty")
	}
	for i, sp := range s.Species {
		if sp.Name == "" {
			return fmt.Errorf("species[%d]: name is required", i)
		}
	}

	if err := s.CoreConfig().Validate(); err != nil {
		return err
	}
	if err := s.Community().Validate(); err != nil {
		return fmt.Errorf("species: %w", err)
	}
	if err := s.Environment().Validate(); err != nil {
		return fmt.Errorf("forcing.%w", err)
	}
	return nil
}

// StepsPerLayer returns the number of accretion steps in one layer.
func (s *Scenario) StepsPerLayer() int {
	return int(math.Round(s.Time.Layer / s.Time.Step))
}

// StepCount returns the number of accretion steps in the run.
func (s *Scenario) StepCount() int {
	return int((s.Time.End-s.Time.Start)/s.Time.Step + stepTolerance)
}

// LayerCount returns the number of stratigraphic layers in the run.
func (s *Scenario) LayerCount() int {
	return core.LayerCount(s.Time.Start, s.Time.End, s.Time.Layer)
}
