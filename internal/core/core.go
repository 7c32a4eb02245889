package core

import (
	"math"
)

// ClasticName labels the trailing deposit slot holding clastic sediment.
const ClasticName = "clastic"

// Config holds the per-run constants of a Core. It is fixed at construction.
type Config struct {
	// Species lists the carbonate producers, in slot order.
	Species []string

	// MaxProduction is the per-species ceiling on production in m/yr.
	MaxProduction []float64

	// ProductionScale divides population-weighted production.
	ProductionScale float64

	// StepDuration is the length of one accretion step in years.
	StepDuration float64

	// LayerCount is the number of stratigraphic layers in the record.
	LayerCount int

	// InitialTop is the starting distance between the depositional surface
	// and the accommodation ceiling.
	InitialTop float64
}

// Validate checks the configuration and returns a *ConfigError describing
// the first problem found.
func (c Config) Validate() error {
	if len(c.Species) == 0 {
		return &ConfigError{Field: "species", Message: "at least one species is required"}
	}
	if len(c.MaxProduction) != len(c.Species) {
		return &ConfigError{
			Field:   "max_production",
			Message: "one maximum production rate per species is required",
		}
	}
	seen := make(map[string]bool, len(c.Species))
	for i, name := range c.Species {
		if name == "" {
			return &ConfigError{Field: "species", Message: "species name must not be empty"}
		}
		if name == ClasticName {
			return &ConfigError{Field: "species", Message: "species name \"clastic\" is reserved"}
		}
		if seen[name] {
			return &ConfigError{Field: "species", Message: "duplicate species name " + name}
		}
		seen[name] = true
		if !finite(c.MaxProduction[i]) || c.MaxProduction[i] < 0 {
			return &ConfigError{Field: "max_production", Message: "rate for " + name + " must be finite and non-negative"}
		}
	}
	if !finite(c.ProductionScale) || c.ProductionScale <= 0 {
		return &ConfigError{Field: "production_scale", Message: "must be positive"}
	}
	if !finite(c.StepDuration) || c.StepDuration <= 0 {
		return &ConfigError{Field: "step_duration", Message: "must be positive"}
	}
	if c.LayerCount <= 0 {
		return &ConfigError{Field: "layer_count", Message: "must be positive"}
	}
	if !finite(c.InitialTop) {
		return &ConfigError{Field: "initial_top", Message: "must be finite"}
	}
	return nil
}

// LayerCount returns the number of layers recorded between start and end
// with layers spanning layerSpan years. The final layer holds the end time.
func LayerCount(start, end, layerSpan float64) int {
	return int((end-start)/layerSpan) + 1
}

// Core is the authoritative layer-by-layer record of one run.
type Core struct {
	species   []string
	maxProd   []float64
	prodScale float64
	dt        float64

	thickness []float64
	deposit   [][]float64 // [slot][layer], clastic slot last
	karst     []float64
	top       float64

	lastLayer  int
	lastRegime Regime
	unmet      float64
}

// New builds a zero-filled Core from cfg.
func New(cfg Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slots := len(cfg.Species) + 1
	deposit := make([][]float64, slots)
	for s := range deposit {
		deposit[s] = make([]float64, cfg.LayerCount)
	}

	return &Core{
		species:    append([]string(nil), cfg.Species...),
		maxProd:    append([]float64(nil), cfg.MaxProduction...),
		prodScale:  cfg.ProductionScale,
		dt:         cfg.StepDuration,
		thickness:  make([]float64, cfg.LayerCount),
		deposit:    deposit,
		karst:      make([]float64, cfg.LayerCount),
		top:        cfg.InitialTop,
		lastRegime: RegimeNone,
	}, nil
}

// LayerCount returns the number of layers in the record.
func (c *Core) LayerCount() int { return len(c.thickness) }

// SpeciesCount returns the number of carbonate species.
func (c *Core) SpeciesCount() int { return len(c.species) }

// ClasticSlot returns the deposit slot index holding clastic sediment.
func (c *Core) ClasticSlot() int { return len(c.species) }

// SlotNames returns species names followed by ClasticName.
func (c *Core) SlotNames() []string {
	names := make([]string, 0, len(c.species)+1)
	names = append(names, c.species...)
	return append(names, ClasticName)
}

// Thickness returns the net thickness of a layer.
func (c *Core) Thickness(layer int) float64 { return c.thickness[layer] }

// Deposit returns the height a slot contributed to a layer.
func (c *Core) Deposit(slot, layer int) float64 { return c.deposit[slot][layer] }

// Karst returns the thickness removed from a layer by karst erosion.
func (c *Core) Karst(layer int) float64 { return c.karst[layer] }

// Top returns the current top elevation relative to the accommodation
// ceiling. Positive values mean room to grow.
func (c *Core) Top() float64 { return c.top }

// LastRegime returns the regime applied by the most recent Advance.
func (c *Core) LastRegime() Regime { return c.lastRegime }

// UnmetErosion returns the cumulative erosion demand that could not be
// satisfied because the record was exhausted down to layer 0.
func (c *Core) UnmetErosion() float64 { return c.unmet }

// ShiftAccommodation moves the accommodation ceiling relative to the
// depositional surface. Sea-level rise and subsidence are positive.
func (c *Core) ShiftAccommodation(delta float64) {
	if !finite(delta) {
		violate(ErrCodeNonFinite, c.lastLayer, "non-finite accommodation shift %v", delta)
	}
	c.top += delta
}

// Snapshot is a read-only deep copy of a Core's record.
type Snapshot struct {
	Slots        []string    `json:"slots"`
	Thickness    []float64   `json:"thickness"`
	Deposit      [][]float64 `json:"deposit"`
	Karst        []float64   `json:"karst"`
	Top          float64     `json:"top"`
	UnmetErosion float64     `json:"unmet_erosion"`
}

// Snapshot copies the current record.
func (c *Core) Snapshot() Snapshot {
	deposit := make([][]float64, len(c.deposit))
	for s := range c.deposit {
		deposit[s] = append([]float64(nil), c.deposit[s]...)
	}
	return Snapshot{
		Slots:        c.SlotNames(),
		Thickness:    append([]float64(nil), c.thickness...),
		Deposit:      deposit,
		Karst:        append([]float64(nil), c.karst...),
		Top:          c.top,
		UnmetErosion: c.unmet,
	}
}

// LayerCount returns the number of layers in the snapshot.
func (s Snapshot) LayerCount() int { return len(s.Thickness) }

// TotalThickness sums the thickness of every layer.
func (s Snapshot) TotalThickness() float64 {
	var total float64
	for _, th := range s.Thickness {
		total += th
	}
	return total
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
