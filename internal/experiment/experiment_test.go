package experiment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
	"github.com/roach88/achemkit/internal/reactor"
)

func TestLoad(t *testing.T) {
	e, err := Load(filepath.Join("testdata", "cycle.cue"))
	require.NoError(t, err)

	assert.Equal(t, "cycle", e.Name)
	assert.Equal(t, ChemistryNetwork, e.Chemistry, "schema default applied")
	assert.Equal(t, uint64(7), e.Seed)
	assert.Equal(t, 20.0, e.Budget)
	assert.Equal(t, map[string]int{"A": 5, "B": 3}, e.Pool)

	n, err := e.ReactionNetwork()
	require.NoError(t, err)
	assert.Equal(t, 2, n.Len())
}

func TestLoad_UnknownFieldHasPosition(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "typo.cue"))
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "typo.cue")
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing reactor", `name: "x", network: "A -> B", pool: {}, budget: 1`},
		{"unknown reactor", `name: "x", network: "A -> B", reactor: "batch", pool: {}, budget: 1`},
		{"negative budget", `name: "x", network: "A -> B", reactor: "iterative", pool: {}, budget: -1`},
		{"negative count", `name: "x", network: "A -> B", reactor: "iterative", pool: {A: -1}, budget: 1`},
		{"pform above one", `name: "x", chemistry: "linear", linear: {pform: 2, pbreak: 0}, reactor: "iterative", pool: {}, budget: 1`},
		{"zero temperature", `name: "x", network: "A -> B", reactor: "gillespie", pool: {}, budget: 1, temperature: 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "inline.cue")
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "got %v", err)
		})
	}
}

func TestParse_SemanticViolations(t *testing.T) {
	_, err := Parse([]byte(`name: "x", reactor: "iterative", pool: {}, budget: 1`), "inline.cue")
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "network", ce.Field)

	_, err = Parse([]byte(`name: "x", network: "A -> B", network_file: "n.chem", reactor: "iterative", pool: {}, budget: 1`), "inline.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestParse_Arity(t *testing.T) {
	e, err := Parse([]byte(`
name: "x"
network: "A + B -> C\nC -> A"
reactor: "iterative"
pool: {A: 2, B: 2}
budget: 4
arity: [1, 2]
`), "inline.cue")
	require.NoError(t, err)

	rule, err := e.Rule()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rule.Arity().Support())
}

func TestRule_MalformedArity(t *testing.T) {
	e := &Experiment{Name: "x", Chemistry: ChemistryIdentity, Reactor: "iterative", Arity: []any{0}}
	_, err := e.Build()
	require.Error(t, err)
	assert.True(t, chem.IsInvariantViolation(err))
	assert.ErrorIs(t, err, dist.ErrInvalid)
}

func TestInitialPool_SortedBySpecies(t *testing.T) {
	e := &Experiment{Pool: map[string]int{"C": 1, "A": 2, "B": 0}}
	assert.Equal(t, chem.SpeciesOf("A", "A", "C"), e.InitialPool())
}

func TestRun_Deterministic(t *testing.T) {
	e, err := Load(filepath.Join("testdata", "cycle.cue"))
	require.NoError(t, err)

	first, err := e.Run()
	require.NoError(t, err)
	second, err := e.Run()
	require.NoError(t, err)

	assert.Equal(t, 20, first.Len())
	assert.Equal(t, first.Text(), second.Text())
}

func TestRun_ReconstructsSubnetwork(t *testing.T) {
	e, err := Load(filepath.Join("testdata", "cycle.cue"))
	require.NoError(t, err)
	e.Budget = 200

	b, err := e.Run()
	require.NoError(t, err)
	got, err := b.ReactionNet()
	require.NoError(t, err)

	want, err := e.ReactionNetwork()
	require.NoError(t, err)
	for r := range got.All() {
		assert.True(t, want.Has(r), "unexpected reaction %s", r)
	}
}

func TestBuild_Kinds(t *testing.T) {
	for _, kind := range reactor.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			e := &Experiment{
				Name:    "k",
				Network: "A + B -> C\nC -> A + B",
				Reactor: string(kind),
				Pool:    map[string]int{"A": 2, "B": 2},
				Budget:  3,
			}
			r, err := e.Build()
			require.NoError(t, err)
			assert.Equal(t, kind, r.Kind())
		})
	}
}

func TestYAMLDecode(t *testing.T) {
	src := `
name: linear
chemistry: linear
linear:
  pform: 0.5
  pbreak: 0.25
  max_length: 4
reactor: stepwise
pool: {A: 3, B: 3}
budget: 5
seed: 11
workers: 4
arity: {1: 1, 2: 3}
estimator: normalized
`
	var e Experiment
	require.NoError(t, yaml.Unmarshal([]byte(src), &e))
	require.NoError(t, e.Validate())

	assert.Equal(t, 0.5, e.Linear.PForm)
	assert.False(t, e.Linear.Undirected)
	assert.Len(t, e.BucketOptions(), 1)

	rule, err := e.Rule()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rule.Arity().Support())

	b, err := e.Run()
	require.NoError(t, err)
	assert.Positive(t, b.Len())
}

func TestHash(t *testing.T) {
	base := func() *Experiment {
		return &Experiment{
			Name:    "h",
			Network: "A + B -> C",
			Reactor: "iterative",
			Pool:    map[string]int{"A": 1, "B": 1},
			Budget:  10,
			Seed:    3,
		}
	}
	h1, err := base().Hash()
	require.NoError(t, err)
	h2, err := base().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	renamed := base()
	renamed.Name = "other"
	h3, err := renamed.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h3, "name is not a simulation input")

	parallel := base()
	parallel.Reactor = "stepwise"
	parallel.Workers = 4
	hp, err := parallel.Hash()
	require.NoError(t, err)
	sequential := base()
	sequential.Reactor = "stepwise"
	hs, err := sequential.Hash()
	require.NoError(t, err)
	assert.Equal(t, hs, hp, "worker count does not change the events")

	reseeded := base()
	reseeded.Seed = 4
	h4, err := reseeded.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}

func TestInline(t *testing.T) {
	e, err := Load(filepath.Join("testdata", "cycle.cue"))
	require.NoError(t, err)

	inlined, err := e.Inline()
	require.NoError(t, err)
	assert.Empty(t, inlined.NetworkFile)
	assert.Equal(t, "A + B\t->\tB + C\nC\t-2.0>\tA", inlined.Network)
	assert.Equal(t, "cycle.chem", e.NetworkFile, "original untouched")

	h1, err := e.Hash()
	require.NoError(t, err)
	h2, err := inlined.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
