package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reefcore/internal/store"
)

// RunList is the output of the runs command.
type RunList struct {
	Runs []store.Run `json:"runs"`
}

// WriteText prints one line per run.
func (l RunList) WriteText(w io.Writer) error {
	if len(l.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found in database.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCENARIO\tSTEPS\tLAYERS\tCREATED\tDIGEST")
	for _, r := range l.Runs {
		digest := r.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Scenario, r.StepCount, r.LayerCount, r.CreatedAt.Format(time.RFC3339), digest)
	}
	return tw.Flush()
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Long: `List every run stored in the database, oldest first.

Example:
  reefcore runs --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(database)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(context.Background())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}
			return newFormatter(rootOpts, cmd).Success(RunList{Runs: runs})
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
