package forcing

import "fmt"

// Environment is the environmental forcing of a run.
type Environment struct {
	// SeaLevel in m relative to the run's datum.
	SeaLevel Series

	// Tectonic is the subsidence rate in m/yr; uplift is negative.
	Tectonic Series

	// Clastic is the clastic sediment input rate in m/yr.
	Clastic Series

	// Flow is the water flow velocity in m/s. Reported only.
	Flow Series

	// Karst is the karst erosion rate in m/yr applied while the surface is
	// above the accommodation ceiling.
	Karst Series
}

// Sample is the environment at one instant.
type Sample struct {
	Time     float64 `json:"time"`
	SeaLevel float64 `json:"sealevel"`
	Tectonic float64 `json:"tecrate"`
	Clastic  float64 `json:"sedinput"`
	Flow     float64 `json:"waterflow"`
	Karst    float64 `json:"karst"`
}

// Sample evaluates every series at t.
func (e Environment) Sample(t float64) Sample {
	return Sample{
		Time:     t,
		SeaLevel: e.SeaLevel.At(t),
		Tectonic: e.Tectonic.At(t),
		Clastic:  e.Clastic.At(t),
		Flow:     e.Flow.At(t),
		Karst:    e.Karst.At(t),
	}
}

// ErosionSignal converts the karst rate into the erosion demand of one step
// of length dt: zero or negative.
func (s Sample) ErosionSignal(dt float64) float64 {
	if s.Karst <= 0 {
		return 0
	}
	return -s.Karst * dt
}

// Validate checks each series and the sign constraints on clastic input,
// flow and karst rate.
func (e Environment) Validate() error {
	named := []struct {
		name        string
		series      Series
		nonNegative bool
	}{
		{"sea_level", e.SeaLevel, false},
		{"tectonic", e.Tectonic, false},
		{"clastic", e.Clastic, true},
		{"flow", e.Flow, true},
		{"karst", e.Karst, true},
	}
	for _, n := range named {
		if err := n.series.Validate(); err != nil {
			return fmt.Errorf("%s: %w", n.name, err)
		}
		if n.nonNegative && !n.series.IsZero() && n.series.Min() < 0 {
			return fmt.Errorf("%s: must be non-negative", n.name)
		}
	}
	return nil
}
