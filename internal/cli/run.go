package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reefcore/internal/report"
	"github.com/roach88/reefcore/internal/scenario"
	"github.com/roach88/reefcore/internal/sim"
	"github.com/roach88/reefcore/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	CSV       string
	Separator string

	// IDGenerator overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// RunSummary is the output of a completed run.
type RunSummary struct {
	RunID    string         `json:"run_id"`
	Scenario string         `json:"scenario"`
	Digest   string         `json:"digest"`
	Steps    int            `json:"steps"`
	Layers   int            `json:"layers"`
	CSV      string         `json:"csv,omitempty"`
	Summary  report.Summary `json:"summary"`
}

// WriteText prints the summary for humans.
func (r RunSummary) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Run %s (%s): %d steps, %d layers\n", r.RunID, r.Scenario, r.Steps, r.Layers)
	fmt.Fprintf(w, "digest %s\n", r.Digest)
	if r.CSV != "" {
		fmt.Fprintf(w, "core table written to %s\n", r.CSV)
	}
	return r.Summary.WriteText(w)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and store the resulting core",
		Long: `Run a scenario to completion and store the core in a SQLite database.

A run aborted by an internal consistency failure is reported and nothing is
stored.

Example:
  reefcore run --db ./runs.db lagoon.yaml
  reefcore run --db ./runs.db lagoon.yaml --csv core.csv --sep ';'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "also write the core table to this CSV file")
	cmd.Flags().StringVar(&opts.Separator, "sep", ",", "CSV field separator (a character, tab, comma or semicolon)")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	sep, err := report.ParseSeparator(opts.Separator)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --sep", err)
	}

	s, err := loadScenario(path)
	if err != nil {
		return err
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, stop := signalContext(cmd)
	defer stop()

	d, err := sim.FromScenario(s)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build simulation", err)
	}
	d.WithLogger(logger)

	formatter.VerboseLog("Running %s: %d steps", s.Name, s.StepCount())
	result, err := d.Run(ctx)
	if err != nil {
		if sim.IsAborted(err) {
			return WrapExitError(ExitFailure, "run aborted", err)
		}
		return WrapExitError(ExitCommandError, "run interrupted", err)
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	rec, err := newRunRecord(gen.Generate(), s, result)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to prepare run", err)
	}
	if _, err := st.WriteRun(ctx, rec); err != nil {
		return WrapExitError(ExitCommandError, "failed to store run", err)
	}
	logger.Info("run stored", "run", rec.ID, "digest", rec.Digest)

	out := RunSummary{
		RunID:    rec.ID,
		Scenario: s.Name,
		Digest:   rec.Digest,
		Steps:    len(result.Steps),
		Layers:   result.Snapshot.LayerCount(),
		Summary:  report.Summarize(result.Snapshot),
	}

	if opts.CSV != "" {
		if err := writeCSVFile(opts.CSV, result, sep); err != nil {
			return WrapExitError(ExitCommandError, "failed to write CSV", err)
		}
		out.CSV = opts.CSV
	}

	return formatter.Success(out)
}

// newRunRecord assembles what the store persists for a finished run.
func newRunRecord(id string, s *scenario.Scenario, result *sim.Result) (store.RunRecord, error) {
	scenJSON, err := s.MarshalCanonical()
	if err != nil {
		return store.RunRecord{}, err
	}
	scenHash, err := s.Hash()
	if err != nil {
		return store.RunRecord{}, err
	}
	digest, err := result.Digest()
	if err != nil {
		return store.RunRecord{}, err
	}
	return store.RunRecord{
		Run: store.Run{
			ID:           id,
			Scenario:     s.Name,
			ScenarioHash: scenHash,
			ScenarioJSON: scenJSON,
			Digest:       digest,
		},
		Result: result,
	}, nil
}

func writeCSVFile(path string, result *sim.Result, sep rune) error {
	table, err := report.NewTable(result.Snapshot, result.Layers)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := table.WriteCSV(f, sep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
