package core

import (
	"fmt"
	"math"
)

// Regime identifies which accommodation regime an Advance applied.
type Regime int

const (
	// RegimeNone means no regime matched: the surface sits exactly at the
	// accommodation ceiling, or Advance has not been called yet.
	RegimeNone Regime = iota

	// RegimeNoAccommodation: surface above the ceiling, no erosion demand.
	RegimeNoAccommodation

	// RegimeKarst: surface above the ceiling, erosion demand consumed by
	// the backward karst pass.
	RegimeKarst

	// RegimeClasticFill: remaining accommodation filled by clastic input
	// alone; carbonate production discarded.
	RegimeClasticFill

	// RegimeCarbonateFill: carbonate production scaled down so that it and
	// the clastic input exactly fill the remaining accommodation.
	RegimeCarbonateFill

	// RegimeOpen: room for everything produced this step.
	RegimeOpen
)

var regimeNames = map[Regime]string{
	RegimeNone:            "none",
	RegimeNoAccommodation: "no-accommodation",
	RegimeKarst:           "karst",
	RegimeClasticFill:     "clastic-fill",
	RegimeCarbonateFill:   "carbonate-fill",
	RegimeOpen:            "open",
}

func (r Regime) String() string {
	if name, ok := regimeNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRegime maps a regime name back to its Regime.
func ParseRegime(name string) (Regime, bool) {
	for r, n := range regimeNames {
		if n == name {
			return r, true
		}
	}
	return RegimeNone, false
}

func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Regime) UnmarshalText(text []byte) error {
	parsed, ok := ParseRegime(string(text))
	if !ok {
		return fmt.Errorf("unknown regime %q", text)
	}
	*r = parsed
	return nil
}

// conservationTolerance bounds the relative drift allowed between a layer's
// thickness and the sum of its slot heights.
const conservationTolerance = 1e-9

// Production returns the carbonate thickness each species would deposit in
// one step. Species with non-positive growth produce nothing. Production is
// capped at the species' maximum rate over the step.
func (c *Core) Production(population, growth []float64) []float64 {
	production := make([]float64, len(c.species))
	for s := range c.species {
		if growth[s] <= 0 {
			continue
		}
		p := c.maxProd[s] * population[s] * c.dt / c.prodScale
		production[s] = math.Min(p, c.maxProd[s]*c.dt)
	}
	return production
}

// Advance applies one accretion step to layer.
//
// population and growth are per-species vectors for this step, clasticRate
// is the clastic sediment input rate and erosion is the karst erosion
// demand (0 for none, negative for a demand of -erosion).
//
// Advance panics with *InvariantError on a layer index out of range or
// lower than a previous call, on mismatched vector lengths, and when the
// record it leaves behind is inconsistent.
func (c *Core) Advance(layer int, population, growth []float64, clasticRate, erosion float64) {
	c.checkInputs(layer, population, growth, clasticRate, erosion)
	c.lastLayer = layer

	production := c.Production(population, growth)
	var prodSum float64
	for _, p := range production {
		prodSum += p
	}
	sh := clasticRate * c.dt
	total := prodSum + sh

	switch {
	case c.top < 0 && erosion == 0:
		c.lastRegime = RegimeNoAccommodation

	case c.top < 0 && erosion < 0:
		c.lastRegime = RegimeKarst
		c.erode(layer, -erosion)

	case c.top > 0 && c.top-sh < 0:
		c.lastRegime = RegimeClasticFill
		c.deposit[c.ClasticSlot()][layer] += c.top
		c.thickness[layer] += c.top
		c.top = 0

	case c.top > 0 && c.top-total < 0:
		c.lastRegime = RegimeCarbonateFill
		frac := (c.top - sh) / prodSum
		var filled float64
		for s, p := range production {
			scaled := p * frac
			c.deposit[s][layer] += scaled
			filled += scaled
		}
		c.deposit[c.ClasticSlot()][layer] += sh
		c.thickness[layer] += filled + sh
		c.top = 0

	case c.top > 0:
		c.lastRegime = RegimeOpen
		for s, p := range production {
			c.deposit[s][layer] += p
		}
		c.deposit[c.ClasticSlot()][layer] += sh
		c.thickness[layer] += total
		c.top -= total

	default:
		c.lastRegime = RegimeNone
	}

	c.checkLayers(layer)
}

// erode walks the record backward from layer, removing up to demand of
// deposited thickness. A partially eroded layer shrinks every slot by the
// same fraction. Demand left over once layer 0 is exhausted is recorded as
// unmet and otherwise dropped.
func (c *Core) erode(layer int, demand float64) {
	remaining := demand
	for k := layer; k >= 0 && remaining > 0; k-- {
		th := c.thickness[k]
		if th > remaining {
			perc := remaining / th
			c.thickness[k] -= remaining
			c.karst[k] += remaining
			c.top += remaining
			for s := range c.deposit {
				c.deposit[s][k] -= perc * c.deposit[s][k]
			}
			remaining = 0
			break
		}

		remaining -= th
		c.karst[k] += th
		for s := range c.deposit {
			c.deposit[s][k] = 0
		}
		c.top += th
		c.thickness[k] = 0
	}
	if remaining > 0 {
		c.unmet += remaining
	}
}

func (c *Core) checkInputs(layer int, population, growth []float64, clasticRate, erosion float64) {
	if layer < 0 || layer >= len(c.thickness) {
		violate(ErrCodeLayerRange, layer, "layer index outside [0, %d)", len(c.thickness))
	}
	if layer < c.lastLayer {
		violate(ErrCodeLayerOrder, layer, "layer index decreased from %d", c.lastLayer)
	}
	if len(population) != len(c.species) || len(growth) != len(c.species) {
		violate(ErrCodeVectorLength, layer, "got %d populations and %d growth rates for %d species",
			len(population), len(growth), len(c.species))
	}
	for s := range population {
		if !finite(population[s]) || !finite(growth[s]) {
			violate(ErrCodeNonFinite, layer, "non-finite population or growth for %s", c.species[s])
		}
		if population[s] < 0 {
			violate(ErrCodeInputSign, layer, "negative population %v for %s", population[s], c.species[s])
		}
	}
	if !finite(clasticRate) || !finite(erosion) {
		violate(ErrCodeNonFinite, layer, "non-finite clastic rate %v or erosion %v", clasticRate, erosion)
	}
	if clasticRate < 0 || erosion > 0 {
		violate(ErrCodeInputSign, layer, "clastic rate %v must be >= 0 and erosion %v <= 0", clasticRate, erosion)
	}
}

// checkLayers verifies thickness and conservation for every layer an
// Advance on layer may have touched.
func (c *Core) checkLayers(layer int) {
	for k := layer; k >= 0; k-- {
		th := c.thickness[k]
		if th < 0 {
			violate(ErrCodeNegativeThickness, k, "thickness %v", th)
		}
		var sum float64
		for s := range c.deposit {
			sum += c.deposit[s][k]
		}
		if math.Abs(sum-th) > conservationTolerance*math.Max(1, th) {
			violate(ErrCodeConservation, k, "slot heights sum to %v, thickness is %v", sum, th)
		}
		if c.lastRegime != RegimeKarst {
			break
		}
	}
}
