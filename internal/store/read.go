package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/sim"
)

const runColumns = `id, scenario, scenario_hash, scenario_json, digest, slots,
	step_count, layer_count, top, unmet_erosion, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r        Run
		scenJSON string
		slots    string
		created  string
	)
	if err := row.Scan(
		&r.ID, &r.Scenario, &r.ScenarioHash, &scenJSON, &r.Digest, &slots,
		&r.StepCount, &r.LayerCount, &r.Top, &r.UnmetErosion, &created,
	); err != nil {
		return Run{}, err
	}

	names, err := unmarshalNames(slots)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	r.Slots = names
	r.ScenarioJSON = []byte(scenJSON)

	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("run %s: created_at: %w", r.ID, err)
	}
	return r, nil
}

// ListRuns returns every stored run in write order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run header. Returns ErrRunNotFound if no run has id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// FindRunsByScenario returns the runs produced from the scenario with the
// given content hash, in write order.
func (s *Store) FindRunsByScenario(ctx context.Context, scenarioHash string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE scenario_hash = ? ORDER BY seq ASC`, scenarioHash)
	if err != nil {
		return nil, fmt.Errorf("query runs by scenario: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadLayers returns a run's layers, oldest first, with their deposits.
func (s *Store) ReadLayers(ctx context.Context, id string) ([]Layer, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT layer, thickness, karst, time, sealevel, tecrate, sedinput, waterflow, karst_rate
		FROM layers
		WHERE run_id = ?
		ORDER BY layer ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query layers: %w", err)
	}
	defer rows.Close()

	layers := make([]Layer, 0, run.LayerCount)
	for rows.Next() {
		var l Layer
		if err := rows.Scan(
			&l.Index, &l.Thickness, &l.Karst,
			&l.Forcing.Time, &l.Forcing.SeaLevel, &l.Forcing.Tectonic,
			&l.Forcing.Clastic, &l.Forcing.Flow, &l.Forcing.Karst,
		); err != nil {
			return nil, fmt.Errorf("scan layer: %w", err)
		}
		l.Deposit = make([]float64, len(run.Slots))
		layers = append(layers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate layers: %w", err)
	}

	if err := s.readDeposits(ctx, id, layers); err != nil {
		return nil, err
	}
	return layers, nil
}

func (s *Store) readDeposits(ctx context.Context, id string, layers []Layer) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT layer, slot, height
		FROM deposits
		WHERE run_id = ?
		ORDER BY layer ASC, slot ASC
	`, id)
	if err != nil {
		return fmt.Errorf("query deposits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			layer, slot int
			height      float64
		)
		if err := rows.Scan(&layer, &slot, &height); err != nil {
			return fmt.Errorf("scan deposit: %w", err)
		}
		if layer < 0 || layer >= len(layers) || slot < 0 || slot >= len(layers[layer].Deposit) {
			return fmt.Errorf("deposit (%d, %d) outside run %s", layer, slot, id)
		}
		layers[layer].Deposit[slot] = height
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate deposits: %w", err)
	}
	return nil
}

// ReadSteps returns a run's step trace in step order.
func (s *Store) ReadSteps(ctx context.Context, id string) ([]sim.StepRecord, error) {
	if _, err := s.ReadRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step, time, layer, top, regime, sealevel, population, growth
		FROM steps
		WHERE run_id = ?
		ORDER BY step ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []sim.StepRecord{}
	for rows.Next() {
		var (
			st          sim.StepRecord
			regime      string
			pop, growth string
		)
		if err := rows.Scan(&st.Step, &st.Time, &st.Layer, &st.Top, &regime, &st.SeaLevel, &pop, &growth); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if err := st.Regime.UnmarshalText([]byte(regime)); err != nil {
			return nil, fmt.Errorf("step %d: %w", st.Step, err)
		}
		if st.Population, err = unmarshalVector(pop); err != nil {
			return nil, fmt.Errorf("step %d: %w", st.Step, err)
		}
		if st.Growth, err = unmarshalVector(growth); err != nil {
			return nil, fmt.Errorf("step %d: %w", st.Step, err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ReadSnapshot rebuilds the final record of a run.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (core.Snapshot, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return core.Snapshot{}, err
	}
	layers, err := s.ReadLayers(ctx, id)
	if err != nil {
		return core.Snapshot{}, err
	}

	snap := core.Snapshot{
		Slots:        run.Slots,
		Thickness:    make([]float64, len(layers)),
		Deposit:      make([][]float64, len(run.Slots)),
		Karst:        make([]float64, len(layers)),
		Top:          run.Top,
		UnmetErosion: run.UnmetErosion,
	}
	for slot := range snap.Deposit {
		snap.Deposit[slot] = make([]float64, len(layers))
	}
	for k, l := range layers {
		snap.Thickness[k] = l.Thickness
		snap.Karst[k] = l.Karst
		for slot, h := range l.Deposit {
			snap.Deposit[slot][k] = h
		}
	}
	return snap, nil
}
