package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/reefcore/internal/canon"
	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/forcing"
	"github.com/roach88/reefcore/internal/scenario"
)

// EnvironmentSource supplies the environmental forcing at a time.
type EnvironmentSource interface {
	Sample(t float64) forcing.Sample
}

// PopulationSource supplies per-species population and growth at a time.
type PopulationSource interface {
	At(t float64) (population, growth []float64)
}

// Observer receives every completed step. Observers run synchronously on
// the driver's goroutine and must not retain the event's slices.
type Observer interface {
	OnStep(StepEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepEvent)

// OnStep calls f.
func (f ObserverFunc) OnStep(e StepEvent) { f(e) }

// Timing describes the step grid of a run.
type Timing struct {
	Start         float64
	Step          float64
	StepCount     int
	StepsPerLayer int
	LayerSpan     float64
}

// StepTime returns the simulation time of step i.
func (t Timing) StepTime(i int) float64 {
	return t.Start + float64(i)*t.Step
}

// LayerOf returns the layer receiving deposition at step i.
func (t Timing) LayerOf(i int) int {
	return i / t.StepsPerLayer
}

// Driver steps one Core through a run.
type Driver struct {
	core      *core.Core
	timing    Timing
	env       EnvironmentSource
	pop       PopulationSource
	observers []Observer
	logger    *slog.Logger
}

// New builds a Driver around a fresh Core.
func New(cfg core.Config, timing Timing, env EnvironmentSource, pop PopulationSource) (*Driver, error) {
	if timing.StepCount <= 0 || timing.StepsPerLayer <= 0 || timing.Step <= 0 {
		return nil, fmt.Errorf("invalid timing: %+v", timing)
	}
	if last := timing.LayerOf(timing.StepCount - 1); last >= cfg.LayerCount {
		return nil, fmt.Errorf("timing reaches layer %d but core has %d layers", last, cfg.LayerCount)
	}

	c, err := core.New(cfg)
	if err != nil {
		return nil, err
	}

	return &Driver{
		core:   c,
		timing: timing,
		env:    env,
		pop:    pop,
		logger: slog.Default(),
	}, nil
}

// FromScenario builds a Driver for a validated scenario.
func FromScenario(s *scenario.Scenario) (*Driver, error) {
	timing := Timing{
		Start:         s.Time.Start,
		Step:          s.Time.Step,
		StepCount:     s.StepCount(),
		StepsPerLayer: s.StepsPerLayer(),
		LayerSpan:     s.Time.Layer,
	}
	return New(s.CoreConfig(), timing, s.Environment(), s.Community())
}

// Observe registers an observer for subsequent steps.
func (d *Driver) Observe(o Observer) {
	d.observers = append(d.observers, o)
}

// WithLogger replaces the driver's logger.
func (d *Driver) WithLogger(l *slog.Logger) *Driver {
	d.logger = l
	return d
}

// Core returns the driven core. Callers must not advance it.
func (d *Driver) Core() *core.Core { return d.core }

// Timing returns the step grid.
func (d *Driver) Timing() Timing { return d.timing }

// Run executes every step. A core invariant violation aborts the run and
// is returned as an error wrapping the *core.InvariantError; no partial
// result is returned.
func (d *Driver) Run(ctx context.Context) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*core.InvariantError)
			if !ok {
				panic(r)
			}
			result = nil
			err = fmt.Errorf("run aborted: %w", ie)
		}
	}()

	d.logger.Info("run starting",
		"steps", d.timing.StepCount,
		"layers", d.core.LayerCount(),
		"species", d.core.SpeciesCount())

	result = &Result{
		Timing: d.timing,
		Steps:  make([]StepRecord, 0, d.timing.StepCount),
	}

	var prev forcing.Sample
	for i := 0; i < d.timing.StepCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := d.timing.StepTime(i)
		layer := d.timing.LayerOf(i)
		sample := d.env.Sample(t)
		if i > 0 {
			d.core.ShiftAccommodation(sample.SeaLevel - prev.SeaLevel + sample.Tectonic*d.timing.Step)
		}
		prev = sample

		population, growth := d.pop.At(t)
		unmetBefore := d.core.UnmetErosion()
		d.core.Advance(layer, population, growth, sample.Clastic, sample.ErosionSignal(d.timing.Step))

		if unmet := d.core.UnmetErosion() - unmetBefore; unmet > 0 {
			d.logger.Warn("karst erosion exceeded available record",
				"step", i, "time", t, "unmet", unmet)
		}

		rec := StepRecord{
			Step:       i,
			Time:       t,
			Layer:      layer,
			Top:        d.core.Top(),
			Regime:     d.core.LastRegime(),
			Population: population,
			Growth:     growth,
			SeaLevel:   sample.SeaLevel,
		}
		result.Steps = append(result.Steps, rec)
		d.logger.Debug("step", "step", i, "layer", layer, "regime", rec.Regime, "top", rec.Top)

		event := StepEvent{StepRecord: rec, Thickness: d.core.Thickness(layer)}
		for _, o := range d.observers {
			o.OnStep(event)
		}
	}

	result.Layers = d.layerSamples()
	result.Snapshot = d.core.Snapshot()

	d.logger.Info("run finished",
		"thickness", result.Snapshot.TotalThickness(),
		"top", result.Snapshot.Top,
		"unmet_erosion", result.Snapshot.UnmetErosion)
	return result, nil
}

// layerSamples samples the environment at the start of each layer.
func (d *Driver) layerSamples() []forcing.Sample {
	samples := make([]forcing.Sample, d.core.LayerCount())
	for k := range samples {
		samples[k] = d.env.Sample(d.timing.Start + float64(k)*d.timing.LayerSpan)
	}
	return samples
}

// RunScenario builds a driver for s and runs it to completion.
func RunScenario(ctx context.Context, s *scenario.Scenario, observers ...Observer) (*Result, error) {
	d, err := FromScenario(s)
	if err != nil {
		return nil, err
	}
	for _, o := range observers {
		d.Observe(o)
	}
	return d.Run(ctx)
}

// IsAborted reports whether err came from a run aborted by a core
// invariant violation.
func IsAborted(err error) bool {
	return core.IsInvariantError(err)
}

// Digest returns the content hash of a snapshot.
func Digest(s core.Snapshot) (string, error) {
	return canon.Hash(canon.DomainSnapshot, SnapshotCanonical(s))
}
