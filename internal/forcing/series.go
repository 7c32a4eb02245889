// Package forcing supplies the per-step inputs of a reef core run: the
// environmental forcing (sea level, subsidence, clastic input, water flow,
// karst erosion) and the tabulated community (population magnitude and
// growth rate per species).
//
// Every input is a Series: a constant or a piecewise-linear curve through
// (time, value) points, held flat beyond its first and last point.
package forcing

import (
	"fmt"
	"math"
	"sort"
)

// Series is a time-dependent scalar.
type Series struct {
	// Constant is used when Points is empty.
	Constant *float64 `yaml:"constant,omitempty" json:"constant,omitempty"`

	// Points are [time, value] pairs sorted by strictly increasing time.
	Points [][]float64 `yaml:"points,omitempty" json:"points,omitempty"`
}

// Constant returns a Series with a fixed value.
func Constant(v float64) Series {
	return Series{Constant: &v}
}

// Curve returns a Series through the given [time, value] pairs.
func Curve(points ...[2]float64) Series {
	s := Series{Points: make([][]float64, len(points))}
	for i, p := range points {
		s.Points[i] = []float64{p[0], p[1]}
	}
	return s
}

// IsZero reports whether the series was left unset.
func (s Series) IsZero() bool {
	return s.Constant == nil && len(s.Points) == 0
}

// Validate checks point shape and ordering.
func (s Series) Validate() error {
	if s.Constant != nil && len(s.Points) > 0 {
		return fmt.Errorf("constant and points are mutually exclusive")
	}
	if s.Constant != nil && !finite(*s.Constant) {
		return fmt.Errorf("constant must be finite")
	}
	for i, p := range s.Points {
		if len(p) != 2 {
			return fmt.Errorf("points[%d]: want [time, value], got %d numbers", i, len(p))
		}
		if !finite(p[0]) || !finite(p[1]) {
			return fmt.Errorf("points[%d]: must be finite", i)
		}
		if i > 0 && p[0] <= s.Points[i-1][0] {
			return fmt.Errorf("points[%d]: time %v not after %v", i, p[0], s.Points[i-1][0])
		}
	}
	return nil
}

// Min returns the smallest value the series takes.
func (s Series) Min() float64 {
	if len(s.Points) == 0 {
		return s.At(0)
	}
	m := math.Inf(1)
	for _, p := range s.Points {
		m = math.Min(m, p[1])
	}
	return m
}

// At evaluates the series at time t. An unset series is 0.
func (s Series) At(t float64) float64 {
	if len(s.Points) == 0 {
		if s.Constant != nil {
			return *s.Constant
		}
		return 0
	}

	pts := s.Points
	if t <= pts[0][0] {
		return pts[0][1]
	}
	last := pts[len(pts)-1]
	if t >= last[0] {
		return last[1]
	}

	// first point strictly after t
	i := sort.Search(len(pts), func(i int) bool { return pts[i][0] > t })
	t0, v0 := pts[i-1][0], pts[i-1][1]
	t1, v1 := pts[i][0], pts[i][1]
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// Canonical returns the series as plain values for canon.MarshalCanonical.
func (s Series) Canonical() map[string]any {
	out := map[string]any{}
	if s.Constant != nil {
		out["constant"] = *s.Constant
	}
	if len(s.Points) > 0 {
		pts := make([]any, len(s.Points))
		for i, p := range s.Points {
			pts[i] = append([]float64(nil), p...)
		}
		out["points"] = pts
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
