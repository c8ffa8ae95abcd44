package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/achemkit/internal/store"
)

// RunSummary is one row of the runs command.
type RunSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Reactor string  `json:"reactor"`
	Seed    uint64  `json:"seed"`
	Budget  float64 `json:"budget"`
	Events  int     `json:"events"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List stored runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := rootOpts.database(database)
			if db == "" {
				return NewExitError(ExitCommandError, "no database: pass --db or set ACHEM_DB")
			}
			st, err := store.Open(db)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			runs, err := st.ListRuns(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}

			summaries := make([]RunSummary, 0, len(runs))
			for _, r := range runs {
				summaries = append(summaries, RunSummary{
					ID: r.ID, Name: r.Name, Reactor: r.Reactor,
					Seed: r.Seed, Budget: r.Budget, Events: r.EventCount,
				})
			}
			if rootOpts.Format == "json" {
				return rootOpts.formatter(cmd).Success(summaries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tREACTOR\tSEED\tBUDGET\tEVENTS")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%g\t%d\n", s.ID, s.Name, s.Reactor, s.Seed, s.Budget, s.Events)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (default $ACHEM_DB)")
	return cmd
}
