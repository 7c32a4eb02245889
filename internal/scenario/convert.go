package scenario

import (
	"github.com/roach88/reefcore/internal/canon"
	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/forcing"
)

// CoreConfig returns the core configuration the scenario describes.
func (s *Scenario) CoreConfig() core.Config {
	cfg := core.Config{
		Species:         make([]string, len(s.Species)),
		MaxProduction:   make([]float64, len(s.Species)),
		ProductionScale: s.Core.ProductionScale,
		StepDuration:    s.Time.Step,
		LayerCount:      s.LayerCount(),
		InitialTop:      s.Core.InitialDepth,
	}
	for i, sp := range s.Species {
		cfg.Species[i] = sp.Name
		cfg.MaxProduction[i] = sp.MaxProduction
	}
	return cfg
}

// Environment returns the scenario's environmental forcing.
func (s *Scenario) Environment() forcing.Environment {
	return forcing.Environment{
		SeaLevel: s.Forcing.SeaLevel,
		Tectonic: s.Forcing.Tectonic,
		Clastic:  s.Forcing.Clastic,
		Flow:     s.Forcing.Flow,
		Karst:    s.Forcing.Karst,
	}
}

// Community returns the scenario's tabulated population source.
func (s *Scenario) Community() forcing.Community {
	members := make([]forcing.Member, len(s.Species))
	for i, sp := range s.Species {
		members[i] = forcing.Member{Population: sp.Population, Growth: sp.Growth}
	}
	return forcing.Community{Members: members}
}

// Canonical returns the scenario as plain values whose canonical JSON
// decodes back into an identical Scenario.
func (s *Scenario) Canonical() map[string]any {
	species := make([]any, len(s.Species))
	for i, sp := range s.Species {
		species[i] = map[string]any{
			"name":           sp.Name,
			"max_production": sp.MaxProduction,
			"population":     sp.Population.Canonical(),
			"growth":         sp.Growth.Canonical(),
		}
	}

	return map[string]any{
		"name":        s.Name,
		"description": s.Description,
		"time": map[string]any{
			"start": s.Time.Start,
			"end":   s.Time.End,
			"step":  s.Time.Step,
			"layer": s.Time.Layer,
		},
		"core": map[string]any{
			"initial_depth":    s.Core.InitialDepth,
			"production_scale": s.Core.ProductionScale,
		},
		"species": species,
		"forcing": map[string]any{
			"sea_level": s.Forcing.SeaLevel.Canonical(),
			"tectonic":  s.Forcing.Tectonic.Canonical(),
			"clastic":   s.Forcing.Clastic.Canonical(),
			"flow":      s.Forcing.Flow.Canonical(),
			"karst":     s.Forcing.Karst.Canonical(),
		},
	}
}

// MarshalCanonical returns the scenario's canonical JSON.
func (s *Scenario) MarshalCanonical() ([]byte, error) {
	return canon.MarshalCanonical(s.Canonical())
}

// Hash returns the scenario's content hash.
func (s *Scenario) Hash() (string, error) {
	return canon.Hash(canon.DomainScenario, s.Canonical())
}
