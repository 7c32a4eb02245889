package forcing

import "fmt"

// Member is one species' tabulated population and growth rate.
type Member struct {
	Population Series
	Growth     Series
}

// Community supplies per-step population and growth vectors. Population
// dynamics are computed elsewhere; the community only replays them.
type Community struct {
	Members []Member
}

// At returns the population and growth vectors at t. A member without a
// growth series grows at a constant rate of 1.
func (c Community) At(t float64) (population, growth []float64) {
	population = make([]float64, len(c.Members))
	growth = make([]float64, len(c.Members))
	for i, m := range c.Members {
		population[i] = m.Population.At(t)
		if m.Growth.IsZero() {
			growth[i] = 1
			continue
		}
		growth[i] = m.Growth.At(t)
	}
	return population, growth
}

// Validate checks every member's series. Population must be non-negative.
func (c Community) Validate() error {
	for i, m := range c.Members {
		if err := m.Population.Validate(); err != nil {
			return fmt.Errorf("members[%d].population: %w", i, err)
		}
		if !m.Population.IsZero() && m.Population.Min() < 0 {
			return fmt.Errorf("members[%d].population: must be non-negative", i)
		}
		if err := m.Growth.Validate(); err != nil {
			return fmt.Errorf("members[%d].growth: %w", i, err)
		}
	}
	return nil
}
