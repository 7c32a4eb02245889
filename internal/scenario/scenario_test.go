package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reefcore/internal/core"
)

const minimalYAML = `
name: minimal
time: { start: 0, end: 100, step: 10, layer: 50 }
core: { initial_depth: 1, production_scale: 10 }
species:
  - name: reef
    max_production: 0.01
    population: { constant: 5 }
`

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	s, err := Load("testdata/lagoon.yaml")
	require.NoError(t, err)

	assert.Equal(t, "lagoon_rise", s.Name)
	assert.Equal(t, 10.0, s.Time.Step)
	require.Len(t, s.Species, 2)
	assert.Equal(t, "branching", s.Species[1].Name)
	assert.Equal(t, 0.012, s.Species[1].MaxProduction)
	assert.InDelta(t, 32.5, s.Species[1].Population.At(1000), 1e-12)
	assert.Equal(t, 0.0005, s.Forcing.Tectonic.At(0))

	assert.Equal(t, 10, s.StepsPerLayer())
	assert.Equal(t, 200, s.StepCount())
	assert.Equal(t, 21, s.LayerCount())
}

func TestLoad_CUEMatchesYAML(t *testing.T) {
	fromYAML, err := Load("testdata/lagoon.yaml")
	require.NoError(t, err)
	fromCUE, err := Load("testdata/lagoon.cue")
	require.NoError(t, err)

	yamlHash, err := fromYAML.Hash()
	require.NoError(t, err)
	cueHash, err := fromCUE.Hash()
	require.NoError(t, err)
	assert.Equal(t, yamlHash, cueHash)
}

func TestLoad_CUESchemaViolation(t *testing.T) {
	path := writeScenario(t, "bad.cue", `
name: "bad"
time: { start: 0, end: 100, step: -1, layer: 50 }
core: { initial_depth: 1, production_scale: 10 }
species: [{ name: "reef", max_production: 0.01 }]
`)
	_, err := Load(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeSchema, loadErr.Code)
}

func TestLoad_CUERejectsUnknownField(t *testing.T) {
	path := writeScenario(t, "extra.cue", `
name: "extra"
time: { start: 0, end: 100, step: 10, layer: 50 }
core: { initial_depth: 1, production_scale: 10 }
species: [{ name: "reef", max_production: 0.01 }]
colour: "blue"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_YAMLRejectsUnknownField(t *testing.T) {
	path := writeScenario(t, "typo.yaml", minimalYAML+"specie: []\n")
	_, err := Load(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeDecodeFailed, loadErr.Code)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	_, err = Load("scenario.toml")
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeUnknownFormat, loadErr.Code)
}

func TestValidate(t *testing.T) {
	base, err := Parse([]byte(minimalYAML), FormatYAML)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }},
		{"end before start", func(s *Scenario) { s.Time.End = -1 }},
		{"zero step", func(s *Scenario) { s.Time.Step = 0 }},
		{"layer not multiple of step", func(s *Scenario) { s.Time.Layer = 25 }},
		{"layer shorter than step", func(s *Scenario) { s.Time.Layer = 5 }},
		{"span shorter than step", func(s *Scenario) { s.Time.End = 5 }},
		{"no species", func(s *Scenario) { s.Species = nil }},
		{"zero production scale", func(s *Scenario) { s.Core.ProductionScale = 0 }},
		{"negative karst", func(s *Scenario) { s.Forcing.Karst.Points = [][]float64{{0, -1}} }},
		{"unsorted sea level", func(s *Scenario) { s.Forcing.SeaLevel.Points = [][]float64{{10, 0}, {0, 1}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *base
			s.Species = append([]Species(nil), base.Species...)
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidate_ReservedSpeciesName(t *testing.T) {
	s, err := Parse([]byte(minimalYAML), FormatYAML)
	require.NoError(t, err)
	s.Species[0].Name = core.ClasticName

	err = s.Validate()
	var ce *core.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestCoreConfig(t *testing.T) {
	s, err := Load("testdata/lagoon.yaml")
	require.NoError(t, err)

	cfg := s.CoreConfig()
	assert.Equal(t, []string{"massive", "branching"}, cfg.Species)
	assert.Equal(t, []float64{0.004, 0.012}, cfg.MaxProduction)
	assert.Equal(t, 50.0, cfg.ProductionScale)
	assert.Equal(t, 10.0, cfg.StepDuration)
	assert.Equal(t, 21, cfg.LayerCount)
	assert.Equal(t, 2.0, cfg.InitialTop)
}

func TestCanonical_RoundTripsThroughJSON(t *testing.T) {
	s, err := Load("testdata/lagoon.yaml")
	require.NoError(t, err)

	data, err := s.MarshalCanonical()
	require.NoError(t, err)

	back, err := Parse(data, FormatJSON)
	require.NoError(t, err)

	want, err := s.Hash()
	require.NoError(t, err)
	got, err := back.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, s.Species[1].Population.Points, back.Species[1].Population.Points)
}
