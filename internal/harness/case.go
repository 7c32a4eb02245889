package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reefcore/internal/scenario"
)

// Case is one harness test: a scenario plus what its run must produce.
type Case struct {
	// Name identifies the case and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Scenario is an inline scenario. Exactly one of Scenario and
	// ScenarioFile is set.
	Scenario *scenario.Scenario `yaml:"scenario,omitempty"`

	// ScenarioFile is a scenario path relative to the case file.
	ScenarioFile string `yaml:"scenario_file,omitempty"`

	Expect Expectations `yaml:"expect,omitempty"`
}

// Expectations constrain the final record and the step trace. Unset
// fields are not checked.
type Expectations struct {
	// Tolerance is the absolute tolerance for float comparisons.
	// Defaults to 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Top            *float64 `yaml:"top,omitempty"`
	TotalThickness *float64 `yaml:"total_thickness,omitempty"`
	UnmetErosion   *float64 `yaml:"unmet_erosion,omitempty"`

	// Regimes maps regime names to the exact number of steps that applied
	// them. Regimes not listed are not checked.
	Regimes map[string]int `yaml:"regimes,omitempty"`

	Layers []LayerExpectation `yaml:"layers,omitempty"`
}

// LayerExpectation constrains one layer.
type LayerExpectation struct {
	Layer     int      `yaml:"layer"`
	Thickness *float64 `yaml:"thickness,omitempty"`
	Karst     *float64 `yaml:"karst,omitempty"`

	// Facies is the expected dominant slot name; "" is not checked.
	Facies string `yaml:"facies,omitempty"`
}

// LoadCase reads a case file and resolves its scenario.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var c Case
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse case YAML: %w", err)
	}

	if c.Name == "" {
		return nil, fmt.Errorf("case %s: name is required", path)
	}
	switch {
	case c.Scenario != nil && c.ScenarioFile != "":
		return nil, fmt.Errorf("case %s: scenario and scenario_file are mutually exclusive", c.Name)
	case c.Scenario != nil:
		if err := c.Scenario.Validate(); err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
	case c.ScenarioFile != "":
		s, err := scenario.Load(filepath.Join(filepath.Dir(path), c.ScenarioFile))
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		c.Scenario = s
	default:
		return nil, fmt.Errorf("case %s: scenario or scenario_file is required", c.Name)
	}

	return &c, nil
}

// LoadCases loads every *.yaml case in dir, sorted by file name.
func LoadCases(dir string) ([]*Case, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	cases := make([]*Case, 0, len(paths))
	for _, p := range paths {
		c, err := LoadCase(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}
