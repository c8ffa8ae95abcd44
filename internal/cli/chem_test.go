package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/achemkit/internal/chem"
)

func TestChemPP(t *testing.T) {
	out, _, err := execute(t, "# cycle\nC -2> A\n\nA + B -> B + C\n", "chem", "pp")
	require.NoError(t, err)
	assert.Equal(t, "A + B\t->\tB + C\nC\t-2.0>\tA\n", out)
}

func TestChemPP_File(t *testing.T) {
	out, _, err := execute(t, "", "chem", "pp", filepath.Join("testdata", "cycle.chem"))
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join("testdata", "cycle.chem"))
	require.NoError(t, err)
	assert.Equal(t, string(want), out)
}

func TestChemPP_Idempotent(t *testing.T) {
	first, _, err := execute(t, "B -> A\nA + A -0.5> B\n", "chem", "pp")
	require.NoError(t, err)
	second, _, err := execute(t, first, "chem", "pp")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChemPP_JSON(t *testing.T) {
	out, _, err := execute(t, "A + B -> C\n", "--format", "json", "chem", "pp")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   NetworkOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Reactions)
	assert.Equal(t, []string{"A", "B", "C"}, resp.Data.Species)
	assert.Equal(t, "A + B\t->\tC", resp.Data.Text)

	n, err := chem.Parse("A + B -> C\n")
	require.NoError(t, err)
	assert.Equal(t, n.Hash(), resp.Data.Hash)
}

func TestChemPP_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		code  int
	}{
		{name: "no arrow", input: "A + B\n", code: ExitFailure},
		{name: "bad rate", input: "A -x> B\n", code: ExitFailure},
		{name: "duplicate", input: "A -> B\nA -> B\n", code: ExitFailure},
		{name: "missing file", args: []string{"testdata/missing.chem"}, code: ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.input, append([]string{"chem", "pp"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestChemUniform(t *testing.T) {
	args := []string{"chem", "uniform", "--species", "4", "--reactions", "6", "--reactants", "[1, 2]", "--seed", "11"}
	first, _, err := execute(t, "", args...)
	require.NoError(t, err)
	second, _, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	n, err := chem.Parse(first)
	require.NoError(t, err)
	assert.LessOrEqual(t, n.Len(), 6)
	for _, s := range n.Seen() {
		assert.Contains(t, []chem.Species{"M0", "M1", "M2", "M3"}, s)
	}
}

func TestChemUniform_Names(t *testing.T) {
	out, _, err := execute(t, "", "chem", "uniform", "--names", "X,Y", "--reactions", "3", "--reactants", "1", "--products", "1")
	require.NoError(t, err)

	n, err := chem.Parse(out)
	require.NoError(t, err)
	for _, s := range n.Seen() {
		assert.Contains(t, []chem.Species{"X", "Y"}, s)
	}
}

func TestChemUniform_SeedFromEnv(t *testing.T) {
	flag, _, err := execute(t, "", "chem", "uniform", "--seed", "5")
	require.NoError(t, err)

	cmd := NewRootCommand()
	t.Setenv("ACHEM_SEED", "5")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"chem", "uniform"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, flag, out.String())
}

func TestChemUniform_BadDistribution(t *testing.T) {
	_, _, err := execute(t, "", "chem", "uniform", "--reactants", "{1: -1}")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "", "chem", "uniform", "--rates", "[unclosed")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestChemLinear(t *testing.T) {
	args := []string{"chem", "linear", "--atoms", "2", "--max-length", "3", "--seed", "1"}
	first, _, err := execute(t, "", args...)
	require.NoError(t, err)
	second, _, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	n, err := chem.Parse(first)
	require.NoError(t, err)
	assert.True(t, n.Has(chem.NewReaction(chem.SpeciesOf("A", "B"), chem.SpeciesOf("AB"))))
	assert.True(t, n.Has(chem.NewReaction(chem.SpeciesOf("AB"), chem.SpeciesOf("A", "B"))))
	for _, s := range n.Seen() {
		assert.LessOrEqual(t, len(s), 3)
	}
}

func TestChemPP_JSONError(t *testing.T) {
	out, _, err := execute(t, "A -> B\nA -> B\n", "--format", "json", "chem", "pp")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeFormat, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "line 2")
}
