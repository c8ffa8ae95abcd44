package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/randomnet"
	"github.com/roach88/achemkit/internal/reactor"
)

// NetworkOutput is the JSON payload of commands that print a network.
type NetworkOutput struct {
	Reactions int      `json:"reactions"`
	Species   []string `json:"species"`
	Hash      string   `json:"hash"`
	Text      string   `json:"text"`
}

func networkOutput(n *chem.Network) NetworkOutput {
	species := make([]string, 0)
	for _, s := range n.Seen() {
		species = append(species, string(s))
	}
	return NetworkOutput{Reactions: n.Len(), Species: species, Hash: n.Hash(), Text: n.Text()}
}

// printNetwork writes n as .chem text, or as a NetworkOutput in JSON mode.
func printNetwork(opts *RootOptions, cmd *cobra.Command, n *chem.Network) error {
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(networkOutput(n))
	}
	if text := n.Text(); text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}
	return nil
}

// inputError reports a malformed network or log. In JSON mode the error is
// also written as a Response so callers parsing stdout see it.
func inputError(opts *RootOptions, cmd *cobra.Command, source string, err error) error {
	if opts.Format == "json" {
		if ferr := opts.formatter(cmd).Error(CodeOf(err), err.Error(), map[string]string{"source": source}); ferr != nil {
			return ferr
		}
	}
	return WrapExitError(ExitFailure, source, err)
}

// NewChemCommand creates the chem command group.
func NewChemCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chem",
		Short: "Work with .chem reaction networks",
	}
	cmd.AddCommand(newChemPPCommand(opts))
	cmd.AddCommand(newChemUniformCommand(opts))
	cmd.AddCommand(newChemLinearCommand(opts))
	return cmd
}

func newChemPPCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pp [file]",
		Short: "Syntax-check and pretty-print a .chem network",
		Long: `Parse a reaction network and print it in canonical form: one reaction
per line, sorted, rates normalised. Reads stdin when no file is given.

Exit codes:
  0 - Network is valid
  1 - Syntax or invariant error
  2 - Command error (file not found, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			n, err := chem.ParseReader(in)
			if err != nil {
				return inputError(opts, cmd, name, err)
			}
			opts.Logger.Debug("parsed network", "source", name, "reactions", n.Len())
			return printNetwork(opts, cmd, n)
		},
	}
}

type uniformOptions struct {
	species   int
	names     []string
	reactions string
	reactants string
	products  string
	rates     string
	seed      uint64
}

func newChemUniformCommand(opts *RootOptions) *cobra.Command {
	o := &uniformOptions{}
	cmd := &cobra.Command{
		Use:   "uniform",
		Short: "Generate a random network with uniformly assigned reactions",
		Long: `Generate a random reaction network. Distribution flags take a number,
a list "[1, 2]" or a weighted mapping "{1: 0.25, 2: 0.75}".

Example:
  achem chem uniform --species 5 --reactions 8 --reactants "[1, 2]" --products 2 --seed 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := randomnet.UniformParams{Species: randomnet.Names(o.species)}
			if len(o.names) > 0 {
				p.Species = chem.SpeciesOf(o.names...)
			}
			var err error
			if p.Reactions, err = intDistFlag("reactions", o.reactions); err != nil {
				return err
			}
			if p.Reactants, err = intDistFlag("reactants", o.reactants); err != nil {
				return err
			}
			if p.Products, err = intDistFlag("products", o.products); err != nil {
				return err
			}
			if p.Rates, err = floatDistFlag("rates", o.rates); err != nil {
				return err
			}
			n, err := randomnet.Uniform(p, reactor.NewRand(seedFlag(cmd, opts, o.seed)))
			if err != nil {
				return WrapExitError(ExitCommandError, "generate network", err)
			}
			return printNetwork(opts, cmd, n)
		},
	}
	cmd.Flags().IntVar(&o.species, "species", 5, "number of generated species M0, M1, ...")
	cmd.Flags().StringSliceVar(&o.names, "names", nil, "explicit species names (overrides --species)")
	cmd.Flags().StringVar(&o.reactions, "reactions", "10", "reaction count distribution")
	cmd.Flags().StringVar(&o.reactants, "reactants", "2", "reactant count distribution")
	cmd.Flags().StringVar(&o.products, "products", "2", "product count distribution")
	cmd.Flags().StringVar(&o.rates, "rates", "1", "rate distribution")
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "random seed (default $ACHEM_SEED or 0)")
	return cmd
}

type linearOptions struct {
	atoms      string
	maxLength  string
	pform      string
	pbreak     string
	undirected bool
	rates      string
	seed       uint64
}

func newChemLinearCommand(opts *RootOptions) *cobra.Command {
	o := &linearOptions{}
	cmd := &cobra.Command{
		Use:   "linear",
		Short: "Generate a network of joins and splits over atom strings",
		Long: `Grow a network of linear polymers from single atoms A, B, ... by joining
molecules with probability pform and breaking them with probability pbreak.

Example:
  achem chem linear --atoms 2 --max-length 3 --pform 0.5 --pbreak 0.5 --seed 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := randomnet.LinearParams{Directed: !o.undirected}
			var err error
			if p.Atoms, err = intDistFlag("atoms", o.atoms); err != nil {
				return err
			}
			if p.MaxLength, err = intDistFlag("max-length", o.maxLength); err != nil {
				return err
			}
			if p.PForm, err = floatDistFlag("pform", o.pform); err != nil {
				return err
			}
			if p.PBreak, err = floatDistFlag("pbreak", o.pbreak); err != nil {
				return err
			}
			if p.Rates, err = floatDistFlag("rates", o.rates); err != nil {
				return err
			}
			n, err := randomnet.Linear(p, reactor.NewRand(seedFlag(cmd, opts, o.seed)))
			if err != nil {
				return WrapExitError(ExitCommandError, "generate network", err)
			}
			return printNetwork(opts, cmd, n)
		},
	}
	cmd.Flags().StringVar(&o.atoms, "atoms", "2", "atom count distribution")
	cmd.Flags().StringVar(&o.maxLength, "max-length", "3", "maximum molecule length distribution")
	cmd.Flags().StringVar(&o.pform, "pform", "1", "join probability distribution")
	cmd.Flags().StringVar(&o.pbreak, "pbreak", "1", "break probability distribution")
	cmd.Flags().BoolVar(&o.undirected, "undirected", false, "treat AB and BA as the same molecule")
	cmd.Flags().StringVar(&o.rates, "rates", "1", "rate distribution")
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "random seed (default $ACHEM_SEED or 0)")
	return cmd
}

// seedFlag returns --seed when given, else ACHEM_SEED, else value.
func seedFlag(cmd *cobra.Command, opts *RootOptions, value uint64) uint64 {
	if !cmd.Flags().Changed("seed") && opts.Env.Seed != nil {
		return *opts.Env.Seed
	}
	return value
}
