package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// WriteRun persists a completed run in one transaction. Writing a run ID
// that already exists is a no-op (ON CONFLICT DO NOTHING) and returns
// inserted=false.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (inserted bool, err error) {
	if rec.Result == nil {
		return false, fmt.Errorf("write run %s: missing result", rec.ID)
	}
	snap := rec.Result.Snapshot
	if len(rec.Result.Layers) != snap.LayerCount() {
		return false, fmt.Errorf("write run %s: %d layer samples for %d layers",
			rec.ID, len(rec.Result.Layers), snap.LayerCount())
	}

	slots, err := marshalNames(snap.Slots)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, scenario_hash, scenario_json, digest, slots,
		 step_count, layer_count, top, unmet_erosion, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Scenario,
		rec.ScenarioHash,
		string(rec.ScenarioJSON),
		rec.Digest,
		slots,
		len(rec.Result.Steps),
		snap.LayerCount(),
		snap.Top,
		snap.UnmetErosion,
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("write run: rows affected: %w", err)
	} else if n == 0 {
		return false, nil
	}

	if err := writeLayers(ctx, tx, rec); err != nil {
		return false, err
	}
	if err := writeSteps(ctx, tx, rec); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run: commit: %w", err)
	}
	return true, nil
}

func writeLayers(ctx context.Context, tx *sql.Tx, rec RunRecord) error {
	layerStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO layers
		(run_id, layer, thickness, karst, time, sealevel, tecrate, sedinput, waterflow, karst_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write layers: prepare: %w", err)
	}
	defer layerStmt.Close()

	depositStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO deposits (run_id, layer, slot, height)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write deposits: prepare: %w", err)
	}
	defer depositStmt.Close()

	snap := rec.Result.Snapshot
	for k := 0; k < snap.LayerCount(); k++ {
		f := rec.Result.Layers[k]
		if _, err := layerStmt.ExecContext(ctx,
			rec.ID, k, snap.Thickness[k], snap.Karst[k],
			f.Time, f.SeaLevel, f.Tectonic, f.Clastic, f.Flow, f.Karst,
		); err != nil {
			return fmt.Errorf("write layer %d: %w", k, err)
		}
		for slot := range snap.Deposit {
			if _, err := depositStmt.ExecContext(ctx, rec.ID, k, slot, snap.Deposit[slot][k]); err != nil {
				return fmt.Errorf("write deposit %d/%d: %w", k, slot, err)
			}
		}
	}
	return nil
}

func writeSteps(ctx context.Context, tx *sql.Tx, rec RunRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps
		(run_id, step, time, layer, top, regime, sealevel, population, growth)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write steps: prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range rec.Result.Steps {
		pop, err := marshalVector(st.Population)
		if err != nil {
			return fmt.Errorf("write step %d: %w", st.Step, err)
		}
		growth, err := marshalVector(st.Growth)
		if err != nil {
			return fmt.Errorf("write step %d: %w", st.Step, err)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, st.Step, st.Time, st.Layer, st.Top, st.Regime.String(), st.SeaLevel, pop, growth,
		); err != nil {
			return fmt.Errorf("write step %d: %w", st.Step, err)
		}
	}
	return nil
}
