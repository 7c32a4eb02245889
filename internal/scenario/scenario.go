package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reefcore/internal/forcing"
)

// Scenario describes one reef core run.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name" json:"name"`

	// Description explains what the scenario models.
	Description string `yaml:"description,omitempty" json:"description"`

	Time    TimeSpan  `yaml:"time" json:"time"`
	Core    CoreSpec  `yaml:"core" json:"core"`
	Species []Species `yaml:"species" json:"species"`
	Forcing Forcing   `yaml:"forcing,omitempty" json:"forcing"`
}

// TimeSpan is the simulated interval in years.
type TimeSpan struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`

	// Step is the accretion step duration.
	Step float64 `yaml:"step" json:"step"`

	// Layer is the time span of one stratigraphic layer. It must be a whole
	// multiple of Step.
	Layer float64 `yaml:"layer" json:"layer"`
}

// CoreSpec holds the core's initial state and production scaling.
type CoreSpec struct {
	// InitialDepth is the starting accommodation: water depth above the
	// depositional surface.
	InitialDepth float64 `yaml:"initial_depth" json:"initial_depth"`

	// ProductionScale divides population-weighted production.
	ProductionScale float64 `yaml:"production_scale" json:"production_scale"`
}

// Species is one carbonate producer and its tabulated community inputs.
type Species struct {
	Name          string         `yaml:"name" json:"name"`
	MaxProduction float64        `yaml:"max_production" json:"max_production"`
	Population    forcing.Series `yaml:"population,omitempty" json:"population"`
	Growth        forcing.Series `yaml:"growth,omitempty" json:"growth"`
}

// Forcing holds the environmental series of a scenario.
type Forcing struct {
	SeaLevel forcing.Series `yaml:"sea_level,omitempty" json:"sea_level"`
	Tectonic forcing.Series `yaml:"tectonic,omitempty" json:"tectonic"`
	Clastic  forcing.Series `yaml:"clastic,omitempty" json:"clastic"`
	Flow     forcing.Series `yaml:"flow,omitempty" json:"flow"`
	Karst    forcing.Series `yaml:"karst,omitempty" json:"karst"`
}

// Format identifies a scenario encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// Load reads, decodes and validates a scenario file.
func Load(path string) (*Scenario, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, &LoadError{Code: ErrCodeUnknownFormat, Message: fmt.Sprintf("unsupported scenario extension: %s", path)}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("scenario file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading scenario: %v", err)}
	}

	return parse(data, format, path)
}

// Parse decodes and validates scenario data in the given format.
func Parse(data []byte, format Format) (*Scenario, error) {
	return parse(data, format, "scenario."+string(format))
}

func parse(data []byte, format Format, filename string) (*Scenario, error) {
	var (
		s   *Scenario
		err error
	)
	switch format {
	case FormatYAML:
		s, err = decodeYAML(data)
	case FormatCUE:
		s, err = decodeCUE(data, filename)
	case FormatJSON:
		s, err = decodeJSON(data)
	default:
		return nil, &LoadError{Code: ErrCodeUnknownFormat, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	return s, nil
}

func decodeYAML(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // typos like "specie:" are errors, not silent zeros
	if err := decoder.Decode(&s); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	return &s, nil
}

func decodeJSON(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("parsing JSON: %v", err)}
	}
	return &s, nil
}
