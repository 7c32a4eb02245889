package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reefcore/internal/report"
	"github.com/roach88/reefcore/internal/scenario"
	"github.com/roach88/reefcore/internal/sim"
	"github.com/roach88/reefcore/internal/store"
	"github.com/roach88/reefcore/internal/stream"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr        string
	Interval    time.Duration
	WaitClients int
	Database    string

	// IDGenerator overrides the run ID generator (for testing).
	IDGenerator store.IDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <scenario>",
		Short: "Run a scenario while streaming steps over a websocket",
		Long: `Run a scenario and broadcast every step as JSON to websocket clients
connected at ws://<addr>/ws.

Clients receive a "hello" frame on connect, one "step" frame per accretion
step and a final "done" frame carrying the core summary.

Example:
  reefcore serve lagoon.yaml --addr :8080 --interval 50ms --wait 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", opts.Addr)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to listen", err)
			}
			ctx, stop := signalContext(cmd)
			defer stop()
			return serveScenario(ctx, opts, s, ln, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "pause between steps")
	cmd.Flags().IntVar(&opts.WaitClients, "wait", 0, "wait for this many clients before starting")
	cmd.Flags().StringVar(&opts.Database, "db", "", "also store the run in this SQLite database")

	return cmd
}

// serveScenario serves the websocket endpoint on ln and runs s, streaming
// each step. It returns once the run has finished and clients have been
// sent the summary.
func serveScenario(ctx context.Context, opts *ServeOptions, s *scenario.Scenario, ln net.Listener, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	hub := stream.NewHub(s.Name, logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	defer func() {
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("ws://%s/ws", ln.Addr())
	formatter.VerboseLog("Streaming %s on %s", s.Name, url)
	logger.Info("serving", "url", url)

	if err := waitForClients(ctx, hub, opts.WaitClients); err != nil {
		return WrapExitError(ExitCommandError, "stopped while waiting for clients", err)
	}

	d, err := sim.FromScenario(s)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build simulation", err)
	}
	d.WithLogger(logger)
	d.Observe(hub)
	if opts.Interval > 0 {
		d.Observe(pacer(ctx, opts.Interval))
	}

	result, err := d.Run(ctx)
	if err != nil {
		if sim.IsAborted(err) {
			return WrapExitError(ExitFailure, "run aborted", err)
		}
		return WrapExitError(ExitCommandError, "run interrupted", err)
	}

	summary := report.Summarize(result.Snapshot)
	if err := hub.Finish(summary); err != nil {
		return WrapExitError(ExitFailure, "failed to send summary", err)
	}

	out := RunSummary{
		Scenario: s.Name,
		Steps:    len(result.Steps),
		Layers:   result.Snapshot.LayerCount(),
		Summary:  summary,
	}
	if out.Digest, err = result.Digest(); err != nil {
		return WrapExitError(ExitFailure, "failed to hash run", err)
	}

	if opts.Database != "" {
		id, err := storeServedRun(ctx, opts, s, result, logger)
		if err != nil {
			return err
		}
		out.RunID = id
	}

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
	default:
	}

	return formatter.Success(out)
}

func storeServedRun(ctx context.Context, opts *ServeOptions, s *scenario.Scenario, result *sim.Result, logger *slog.Logger) (string, error) {
	st, err := openStore(opts.Database)
	if err != nil {
		return "", err
	}
	defer st.Close()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	rec, err := newRunRecord(gen.Generate(), s, result)
	if err != nil {
		return "", WrapExitError(ExitFailure, "failed to prepare run", err)
	}
	if _, err := st.WriteRun(ctx, rec); err != nil {
		return "", WrapExitError(ExitCommandError, "failed to store run", err)
	}
	logger.Info("run stored", "run", rec.ID)
	return rec.ID, nil
}

// waitForClients blocks until hub has at least n clients.
func waitForClients(ctx context.Context, hub *stream.Hub, n int) error {
	if n <= 0 {
		return nil
	}
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for hub.ClientCount() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// pacer slows the run so clients can follow it. Cancellation cuts the
// pause short; the driver notices it before the next step.
func pacer(ctx context.Context, interval time.Duration) sim.Observer {
	return sim.ObserverFunc(func(sim.StepEvent) {
		t := time.NewTimer(interval)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	})
}
