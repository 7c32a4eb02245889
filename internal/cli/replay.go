package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reefcore/internal/scenario"
	"github.com/roach88/reefcore/internal/sim"
)

// ReplayResult holds the replay comparison for one run.
type ReplayResult struct {
	RunID         string `json:"run_id"`
	Scenario      string `json:"scenario"`
	StoredDigest  string `json:"stored_digest"`
	ReplayDigest  string `json:"replay_digest"`
	ScenarioMatch bool   `json:"scenario_match"`
	Deterministic bool   `json:"deterministic"`
}

// WriteText prints the comparison for humans.
func (r ReplayResult) WriteText(w io.Writer) error {
	status := "✓ deterministic"
	if !r.Deterministic {
		status = "✗ digest mismatch"
	}
	fmt.Fprintf(w, "Run %s (%s): %s\n", r.RunID, r.Scenario, status)
	fmt.Fprintf(w, "  stored: %s\n  replay: %s\n", r.StoredDigest, r.ReplayDigest)
	if !r.ScenarioMatch {
		fmt.Fprintln(w, "  stored scenario JSON no longer hashes to the stored scenario hash")
	}
	return nil
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-run a stored run and verify determinism",
		Long: `Re-run the scenario stored with a run and compare the digest of the new
record with the stored one.

Exit codes:
  0 - The replay reproduced the stored record
  1 - The digests differ
  2 - Command error (database or run not found, etc.)

Examples:
  reefcore replay --db ./runs.db 0190c1f2-...
  reefcore replay --db ./runs.db 0190c1f2-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, database, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *RootOptions, database, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd.ErrOrStderr())

	st, err := openStore(database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	run, err := readRun(ctx, st, id)
	if err != nil {
		return err
	}

	s, err := scenario.Parse(run.ScenarioJSON, scenario.FormatJSON)
	if err != nil {
		return WrapExitError(ExitFailure, "stored scenario is invalid", err)
	}
	hash, err := s.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash stored scenario", err)
	}

	d, err := sim.FromScenario(s)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build simulation", err)
	}
	result, err := d.WithLogger(logger).Run(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "replay aborted", err)
	}
	digest, err := result.Digest()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash replay", err)
	}

	out := ReplayResult{
		RunID:         run.ID,
		Scenario:      run.Scenario,
		StoredDigest:  run.Digest,
		ReplayDigest:  digest,
		ScenarioMatch: hash == run.ScenarioHash,
		Deterministic: digest == run.Digest,
	}
	if err := formatter.Success(out); err != nil {
		return err
	}
	if !out.Deterministic {
		return NewExitError(ExitFailure, "replay digest does not match stored digest")
	}
	return nil
}
