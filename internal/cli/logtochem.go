package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/achemkit/internal/bucket"
)

// LogToChemOptions holds flags for the log-to-chem command.
type LogToChemOptions struct {
	*RootOptions
	After     float64
	Estimator string
}

// NewLogToChemCommand creates the log-to-chem command.
func NewLogToChemCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogToChemOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log-to-chem [file]",
		Short: "Reconstruct a reaction network from an event log",
		Long: `Read an event log and print the reaction network it witnesses. Elastic
events are ignored. Reads stdin when no file is given.

Rates are taken from the log when events carry them, otherwise estimated:
  count      - number of occurrences (default)
  normalized - occurrences divided by how often the reactants were drawn

Examples:
  achem log-to-chem run.log
  achem simulate cycle.cue | achem log-to-chem --after 100`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogToChem(opts, args, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.After, "after", 0, "only use events strictly after this simulation time")
	cmd.Flags().StringVar(&opts.Estimator, "estimator", "count", "rate estimator (count|normalized)")

	return cmd
}

func runLogToChem(opts *LogToChemOptions, args []string, cmd *cobra.Command) error {
	est, err := bucket.ParseEstimator(opts.Estimator)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --estimator", err)
	}

	in, name, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	b, err := bucket.ParseReader(in, bucket.WithEstimator(est))
	if err != nil {
		return inputError(opts.RootOptions, cmd, name, err)
	}
	if cmd.Flags().Changed("after") {
		b = b.After(opts.After)
	}
	opts.Logger.Debug("parsed event log", "source", name, "events", b.Len())

	net, err := b.ReactionNet()
	if err != nil {
		return inputError(opts.RootOptions, cmd, name, err)
	}
	return printNetwork(opts.RootOptions, cmd, net)
}
