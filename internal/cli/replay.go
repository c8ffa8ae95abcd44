package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/experiment"
	"github.com/roach88/achemkit/internal/reactor"
	"github.com/roach88/achemkit/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	All      bool
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Name          string `json:"name"`
	Events        int    `json:"events"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
	NetworkHash   string `json:"network_hash"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id...]",
		Short: "Re-simulate stored runs and verify determinism",
		Long: `Rebuild each stored run from its experiment and seed, simulate it again
and compare the new event stream with the stored one event by event
(simulation time, reactants, products). Wall-clock stamps are not compared.

Exit codes:
  0 - All runs replayed identically
  1 - A replay diverged from the stored events
  2 - Command error (database not found, unknown run, etc.)

Examples:
  achem replay --db ./achem.db 0190c6a4-...
  achem replay --db ./achem.db --all --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $ACHEM_DB)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "replay every stored run")

	return cmd
}

func runReplay(opts *ReplayOptions, ids []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db := opts.database(opts.Database)
	if db == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set ACHEM_DB")
	}
	if len(ids) == 0 && !opts.All {
		return NewExitError(ExitCommandError, "no runs given: pass run IDs or --all")
	}

	st, err := store.Open(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.All {
		if runs, err = st.ListRuns(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	} else {
		for _, id := range ids {
			run, err := st.ReadRun(ctx, id)
			if errors.Is(err, store.ErrRunNotFound) {
				return WrapExitError(ExitCommandError, "unknown run", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read run", err)
			}
			runs = append(runs, run)
		}
	}

	result := ReplayResult{Runs: []ReplayRunResult{}, TotalRuns: len(runs), AllDeterministic: true}
	for _, run := range runs {
		r, err := replayRun(ctx, opts, st, run)
		if err != nil {
			return err
		}
		if !r.Deterministic {
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, r)
	}

	var failure *ErrorBody
	if !result.AllDeterministic {
		failure = &ErrorBody{Code: CodeReplay, Message: "replay diverged from stored events"}
	}
	if opts.Format == "json" {
		if err := opts.formatter(cmd).Report(result, failure); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range result.Runs {
			if r.Deterministic {
				fmt.Fprintf(w, "✓ %s (%s): %d events replayed\n", r.RunID, r.Name, r.Events)
			} else {
				fmt.Fprintf(w, "✗ %s (%s): %s\n", r.RunID, r.Name, r.Divergence)
			}
		}
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

func replayRun(ctx context.Context, opts *ReplayOptions, st *store.Store, run store.Run) (ReplayRunResult, error) {
	out := ReplayRunResult{RunID: run.ID, Name: run.Name}

	var exp experiment.Experiment
	if err := json.Unmarshal(run.Experiment, &exp); err != nil {
		return out, WrapExitError(ExitFailure, fmt.Sprintf("run %s: decode experiment", run.ID), err)
	}
	stored, err := st.ReadEvents(ctx, run.ID)
	if err != nil {
		return out, WrapExitError(ExitCommandError, "failed to read events", err)
	}
	out.Events = len(stored)

	opts.Logger.Debug("replaying run", "run_id", run.ID, "reactor", exp.Reactor, "seed", exp.Seed)
	replayed, err := exp.Run(reactor.WithLogger(opts.Logger))
	if err != nil {
		return out, WrapExitError(ExitFailure, fmt.Sprintf("run %s: simulation failed", run.ID), err)
	}

	out.Divergence = compareEvents(stored, replayed.Events())
	out.Deterministic = out.Divergence == ""

	net, err := bucket.New(stored, exp.BucketOptions()...).ReactionNet()
	if err != nil {
		return out, WrapExitError(ExitFailure, fmt.Sprintf("run %s: reconstruction failed", run.ID), err)
	}
	out.NetworkHash = net.Hash()
	if run.NetworkHash != "" && run.NetworkHash != out.NetworkHash {
		out.Deterministic = false
		out.Divergence = fmt.Sprintf("network hash %s, stored %s", out.NetworkHash, run.NetworkHash)
	}
	return out, nil
}

// compareEvents returns a description of the first difference, or "".
func compareEvents(stored, replayed []bucket.Event) string {
	for i := range min(len(stored), len(replayed)) {
		if !stored[i].Equal(replayed[i]) {
			return fmt.Sprintf("event %d: stored %q, replayed %q", i, stored[i].Text(), replayed[i].Text())
		}
	}
	if len(stored) != len(replayed) {
		return fmt.Sprintf("stored %d events, replayed %d", len(stored), len(replayed))
	}
	return ""
}
