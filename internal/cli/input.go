package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/achemkit/internal/dist"
)

// openInput returns the named file, or stdin when args is empty or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "<stdin>", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, args[0], WrapExitError(ExitCommandError, "failed to open input", err)
	}
	return f, args[0], nil
}

// parseDistValue decodes a distribution flag written in YAML flow syntax:
// "2", "[1, 2]" or "{1: 0.25, 2: 0.75}".
func parseDistValue(flag, s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("--%s: %v", flag, err))
	}
	return v, nil
}

func intDistFlag(flag, s string) (dist.Dist[int], error) {
	v, err := parseDistValue(flag, s)
	if err != nil {
		return dist.Dist[int]{}, err
	}
	d, err := dist.Ints(v)
	if err != nil {
		return d, WrapExitError(ExitCommandError, "--"+flag, err)
	}
	return d, nil
}

func floatDistFlag(flag, s string) (dist.Dist[float64], error) {
	v, err := parseDistValue(flag, s)
	if err != nil {
		return dist.Dist[float64]{}, err
	}
	d, err := dist.Floats(v)
	if err != nil {
		return d, WrapExitError(ExitCommandError, "--"+flag, err)
	}
	return d, nil
}
