package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/experiment"
	"github.com/roach88/achemkit/internal/metrics"
	"github.com/roach88/achemkit/internal/reactor"
	"github.com/roach88/achemkit/internal/runid"
	"github.com/roach88/achemkit/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database    string
	Output      string
	Seed        uint64
	Budget      float64
	Workers     int
	Temperature float64
	Metrics     bool

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to runid.UUIDv7.
	IDs runid.Generator

	// Clock overrides the wall clock used to stamp events (for testing).
	Clock func() time.Time
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	RunID   string        `json:"run_id,omitempty"`
	Name    string        `json:"name"`
	Reactor string        `json:"reactor"`
	Seed    uint64        `json:"seed"`
	Events  int           `json:"events"`
	Network NetworkOutput `json:"network"`
	Metrics []string      `json:"metrics,omitempty"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	return newSimulateCommand(&SimulateOptions{RootOptions: rootOpts})
}

func newSimulateCommand(opts *SimulateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <experiment.cue>",
		Short: "Run an experiment and print its event log",
		Long: `Run the reactor described by a CUE experiment file and write the
resulting event log. With --db (or $ACHEM_DB) the run and its events are
stored so they can be replayed later.

Flags override the experiment's seed, budget, workers and temperature.
$ACHEM_SEED, $ACHEM_WORKERS and $ACHEM_TEMPERATURE override the experiment
when the flag is not given.

Examples:
  achem simulate ./cycle.cue
  achem simulate ./cycle.cue --seed 7 --budget 1000 --out run.log
  achem simulate ./cycle.cue --db ./achem.db --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "store the run in this SQLite database (default $ACHEM_DB)")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "write the event log to a file instead of stdout")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "override the experiment seed")
	cmd.Flags().Float64Var(&opts.Budget, "budget", 0, "override the experiment budget")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "override the experiment worker count")
	cmd.Flags().Float64Var(&opts.Temperature, "temperature", 0, "override the Gillespie temperature")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print reactor metrics to stderr")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	exp, err := experiment.Load(path)
	if err != nil {
		if experiment.IsConfigError(err) {
			return WrapExitError(ExitFailure, "invalid experiment", err)
		}
		return WrapExitError(ExitCommandError, "failed to load experiment", err)
	}
	applyOverrides(opts, exp, cmd)
	if exp, err = exp.Inline(); err != nil {
		return WrapExitError(ExitFailure, "failed to read network", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	reg := prometheus.NewRegistry()
	observer := metrics.NewObserver(reg)

	opts.Logger.Info("simulating", "experiment", exp.Name, "reactor", exp.Reactor, "seed", exp.Seed, "budget", exp.Budget)
	b, err := exp.Run(
		reactor.WithLogger(opts.Logger),
		reactor.WithObserver(observer),
		reactor.WithClock(clock),
	)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}
	net, err := b.ReactionNet()
	if err != nil {
		return WrapExitError(ExitFailure, "reconstruction failed", err)
	}
	opts.Logger.Info("simulation finished", "events", b.Len(), "reactions", net.Len())

	result := SimulateResult{
		Name:    exp.Name,
		Reactor: exp.Reactor,
		Seed:    exp.Seed,
		Events:  b.Len(),
		Network: networkOutput(net),
	}

	if db := opts.database(opts.Database); db != "" {
		id, err := storeRun(cmd.Context(), db, opts.ids(), exp, b, net.Hash())
		if err != nil {
			return err
		}
		result.RunID = id
		opts.Logger.Info("run stored", "db", db, "run_id", id)
	}

	if opts.Metrics {
		samples, err := metrics.Gather(reg)
		if err != nil {
			return WrapExitError(ExitFailure, "metrics", err)
		}
		for _, s := range samples {
			result.Metrics = append(result.Metrics, s.String())
			fmt.Fprintln(cmd.ErrOrStderr(), s.String())
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(b.Text()), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write event log", err)
		}
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	if opts.Output == "" {
		if _, err := b.WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	if result.RunID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "run %s\n", result.RunID)
	}
	return nil
}

// applyOverrides applies flags, then environment defaults, to exp.
func applyOverrides(opts *SimulateOptions, exp *experiment.Experiment, cmd *cobra.Command) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("seed"):
		exp.Seed = opts.Seed
	case opts.Env.Seed != nil:
		exp.Seed = *opts.Env.Seed
	}
	if flags.Changed("budget") {
		exp.Budget = opts.Budget
	}
	switch {
	case flags.Changed("workers"):
		exp.Workers = opts.Workers
	case opts.Env.Workers > 0:
		exp.Workers = opts.Env.Workers
	}
	switch {
	case flags.Changed("temperature"):
		exp.Temperature = opts.Temperature
	case opts.Env.Temperature > 0:
		exp.Temperature = opts.Env.Temperature
	}
}

func (o *SimulateOptions) ids() runid.Generator {
	if o.IDs != nil {
		return o.IDs
	}
	return runid.UUIDv7{}
}

func storeRun(ctx context.Context, db string, ids runid.Generator, exp *experiment.Experiment, b *bucket.Bucket, networkHash string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(db)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	hash, err := exp.Hash()
	if err != nil {
		return "", WrapExitError(ExitFailure, "hash experiment", err)
	}
	doc, err := json.Marshal(exp)
	if err != nil {
		return "", WrapExitError(ExitFailure, "encode experiment", err)
	}
	run, err := st.WriteRun(ctx, store.Run{
		ID:          ids.New(),
		Name:        exp.Name,
		Reactor:     exp.Reactor,
		Seed:        exp.Seed,
		Budget:      exp.Budget,
		InputHash:   hash,
		Experiment:  doc,
		NetworkHash: networkHash,
	}, b.Events())
	if err != nil {
		return "", WrapExitError(ExitFailure, "failed to store run", err)
	}
	return run.ID, nil
}
