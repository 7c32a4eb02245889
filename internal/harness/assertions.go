package harness

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/report"
	"github.com/roach88/reefcore/internal/sim"
)

const defaultTolerance = 1e-9

// evaluate checks a finished run against the case's expectations.
func evaluate(exp Expectations, run *sim.Result, result *Result) {
	tol := exp.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}
	snap := run.Snapshot

	checkFloat(result, "top", exp.Top, snap.Top, tol)
	checkFloat(result, "total_thickness", exp.TotalThickness, snap.TotalThickness(), tol)
	checkFloat(result, "unmet_erosion", exp.UnmetErosion, snap.UnmetErosion, tol)

	if len(exp.Regimes) > 0 {
		counts := run.RegimeCounts()
		names := make([]string, 0, len(exp.Regimes))
		for name := range exp.Regimes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			regime, ok := core.ParseRegime(name)
			if !ok {
				result.AddError(fmt.Sprintf("regimes: unknown regime %q", name))
				continue
			}
			if got, want := counts[regime], exp.Regimes[name]; got != want {
				result.AddError(fmt.Sprintf("regimes: %s applied %d times, expected %d", name, got, want))
			}
		}
	}

	if len(exp.Layers) == 0 {
		return
	}
	facies := report.Summarize(snap).Facies
	for _, le := range exp.Layers {
		if le.Layer < 0 || le.Layer >= snap.LayerCount() {
			result.AddError(fmt.Sprintf("layers: layer %d outside [0, %d)", le.Layer, snap.LayerCount()))
			continue
		}
		prefix := fmt.Sprintf("layer %d", le.Layer)
		checkFloat(result, prefix+" thickness", le.Thickness, snap.Thickness[le.Layer], tol)
		checkFloat(result, prefix+" karst", le.Karst, snap.Karst[le.Layer], tol)
		if le.Facies != "" && facies[le.Layer] != le.Facies {
			result.AddError(fmt.Sprintf("%s facies: got %q, expected %q", prefix, facies[le.Layer], le.Facies))
		}
	}
}

func checkFloat(result *Result, what string, want *float64, got, tol float64) {
	if want == nil {
		return
	}
	if math.Abs(got-*want) > tol {
		result.AddError(fmt.Sprintf("%s: got %v, expected %v", what, got, *want))
	}
}
