package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/sim"
)

// propertyTolerance bounds relative float drift in property checks.
const propertyTolerance = 1e-9

// Harness runs cases.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a case with a fresh harness.
func Run(c *Case) (*Result, error) {
	return New(nil).Run(context.Background(), c)
}

// Run executes the case's scenario, checking core properties after every
// step, then evaluates the case's expectations.
func (h *Harness) Run(ctx context.Context, c *Case) (*Result, error) {
	h.logger.Info("running case", "case", c.Name)

	d, err := sim.FromScenario(c.Scenario)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.Name, err)
	}
	d.WithLogger(h.logger)

	result := NewResult()
	chk := newChecker(d.Core(), result)
	d.Observe(chk)

	run, err := d.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.Name, err)
	}

	result.Snapshot = run.Snapshot
	result.Steps = run.Steps
	evaluate(c.Expect, run, result)

	h.logger.Info("case finished", "case", c.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// checker verifies core properties after each step. It records at most
// one failure per property so a broken run stays readable.
type checker struct {
	core   *core.Core
	result *Result

	karst  []float64
	unmet  float64
	failed map[string]bool
}

func newChecker(c *core.Core, r *Result) *checker {
	return &checker{
		core:   c,
		result: r,
		karst:  make([]float64, c.LayerCount()),
		failed: make(map[string]bool),
	}
}

func (k *checker) fail(property string, format string, args ...any) {
	if k.failed[property] {
		return
	}
	k.failed[property] = true
	k.result.AddError(fmt.Sprintf("%s: %s", property, fmt.Sprintf(format, args...)))
}

func (k *checker) OnStep(e sim.StepEvent) {
	c := k.core
	for layer := 0; layer < c.LayerCount(); layer++ {
		th := c.Thickness(layer)
		if th < 0 {
			k.fail("non-negative thickness", "step %d layer %d has thickness %v", e.Step, layer, th)
		}

		var sum float64
		for s := 0; s <= c.ClasticSlot(); s++ {
			sum += c.Deposit(s, layer)
		}
		if math.Abs(sum-th) > propertyTolerance*math.Max(1, th) {
			k.fail("conservation", "step %d layer %d slots sum to %v, thickness %v", e.Step, layer, sum, th)
		}

		karst := c.Karst(layer)
		if karst < k.karst[layer] {
			k.fail("monotonic karst", "step %d layer %d karst fell from %v to %v", e.Step, layer, k.karst[layer], karst)
		}
		k.karst[layer] = karst
	}

	if unmet := c.UnmetErosion(); unmet < k.unmet {
		k.fail("monotonic unmet erosion", "step %d unmet erosion fell from %v to %v", e.Step, k.unmet, unmet)
	} else {
		k.unmet = unmet
	}

	switch e.Regime {
	case core.RegimeClasticFill, core.RegimeCarbonateFill:
		if e.Top != 0 {
			k.fail("fill reaches ceiling", "step %d %s left top at %v", e.Step, e.Regime, e.Top)
		}
	case core.RegimeOpen:
		if e.Top < 0 {
			k.fail("open stays below ceiling", "step %d left top at %v", e.Step, e.Top)
		}
	}
}
