// Package experiment describes one simulation run: the chemistry, the
// initial pool, the reactor and its budget. Experiments are written in CUE
// or embedded in YAML harness scenarios and decode into the same struct.
package experiment

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/canon"
	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
	"github.com/roach88/achemkit/internal/reactor"
)

// Chemistry kinds.
const (
	ChemistryNetwork  = "network"
	ChemistryIdentity = "identity"
	ChemistryLinear   = "linear"
)

// Experiment is the decoded form of an experiment file.
type Experiment struct {
	Name string `json:"name" yaml:"name"`

	// Chemistry selects the reaction rule. Defaults to "network".
	Chemistry string `json:"chemistry,omitempty" yaml:"chemistry,omitempty"`

	// Network is inline .chem text; NetworkFile is a path relative to the
	// experiment file. At most one may be set.
	Network     string `json:"network,omitempty" yaml:"network,omitempty"`
	NetworkFile string `json:"network_file,omitempty" yaml:"network_file,omitempty"`

	Linear *Linear `json:"linear,omitempty" yaml:"linear,omitempty"`

	Reactor string         `json:"reactor" yaml:"reactor"`
	Pool    map[string]int `json:"pool" yaml:"pool"`
	Budget  float64        `json:"budget" yaml:"budget"`
	Seed    uint64         `json:"seed" yaml:"seed"`

	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Workers     int     `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Arity is a number, a list of numbers or a number->weight mapping.
	// When set, Iterative and Stepwise draws sample it instead of the
	// fixed default.
	Arity any `json:"arity,omitempty" yaml:"arity,omitempty"`

	Estimator string `json:"estimator,omitempty" yaml:"estimator,omitempty"`

	dir string
}

// Linear configures the procedural linear chemistry.
type Linear struct {
	PForm      float64 `json:"pform" yaml:"pform"`
	PBreak     float64 `json:"pbreak" yaml:"pbreak"`
	MaxLength  int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Undirected bool    `json:"undirected,omitempty" yaml:"undirected,omitempty"`
}

// SetDir sets the directory NetworkFile is resolved against.
func (e *Experiment) SetDir(dir string) { e.dir = dir }

// Validate checks the fields that can be checked without reading files.
func (e *Experiment) Validate() error {
	if e.Name == "" {
		return &ConfigError{Field: "name", Message: "name is required"}
	}
	if _, err := reactor.ParseKind(e.Reactor); err != nil {
		return &ConfigError{Field: "reactor", Message: err.Error()}
	}
	if e.Budget < 0 {
		return &ConfigError{Field: "budget", Message: fmt.Sprintf("negative budget %v", e.Budget)}
	}
	if e.Temperature < 0 {
		return &ConfigError{Field: "temperature", Message: fmt.Sprintf("negative temperature %v", e.Temperature)}
	}
	if e.Workers < 0 {
		return &ConfigError{Field: "workers", Message: fmt.Sprintf("negative workers %d", e.Workers)}
	}
	for _, name := range slices.Sorted(maps.Keys(e.Pool)) {
		if e.Pool[name] < 0 {
			return &ConfigError{Field: "pool." + name, Message: fmt.Sprintf("negative count %d", e.Pool[name])}
		}
	}
	if e.Estimator != "" {
		if _, err := bucket.ParseEstimator(e.Estimator); err != nil {
			return &ConfigError{Field: "estimator", Message: err.Error()}
		}
	}

	switch e.chemistryKind() {
	case ChemistryNetwork:
		if e.Network == "" && e.NetworkFile == "" {
			return &ConfigError{Field: "network", Message: "network chemistry needs network or network_file"}
		}
		if e.Network != "" && e.NetworkFile != "" {
			return &ConfigError{Field: "network", Message: "network and network_file are mutually exclusive"}
		}
	case ChemistryIdentity:
	case ChemistryLinear:
		if e.Linear == nil {
			return &ConfigError{Field: "linear", Message: "linear chemistry needs a linear block"}
		}
	default:
		return &ConfigError{Field: "chemistry", Message: fmt.Sprintf("unknown chemistry %q", e.Chemistry)}
	}
	return nil
}

func (e *Experiment) chemistryKind() string {
	if e.Chemistry == "" {
		return ChemistryNetwork
	}
	return e.Chemistry
}

// ReactionNetwork parses the configured network. It returns nil for
// chemistries that have none.
func (e *Experiment) ReactionNetwork() (*chem.Network, error) {
	if e.chemistryKind() != ChemistryNetwork {
		return nil, nil
	}
	if e.Network != "" {
		return chem.Parse(e.Network)
	}
	path := e.NetworkFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network: %w", err)
	}
	defer f.Close()
	n, err := chem.ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Inline returns a copy with NetworkFile read into Network, so the copy can
// be stored and rebuilt without the original file.
func (e *Experiment) Inline() (*Experiment, error) {
	out := *e
	if e.chemistryKind() != ChemistryNetwork || e.NetworkFile == "" {
		return &out, nil
	}
	n, err := e.ReactionNetwork()
	if err != nil {
		return nil, err
	}
	out.Network, out.NetworkFile = n.Text(), ""
	return &out, nil
}

// Rule builds the chemistry the reactor drives.
func (e *Experiment) Rule() (achem.Chemistry, error) {
	var c achem.Chemistry
	switch e.chemistryKind() {
	case ChemistryNetwork:
		n, err := e.ReactionNetwork()
		if err != nil {
			return nil, err
		}
		c = achem.NewNetworkChemistry(n)
	case ChemistryIdentity:
		c = achem.Identity{}
	case ChemistryLinear:
		l := &achem.LinearChemistry{
			PForm:     e.Linear.PForm,
			PBreak:    e.Linear.PBreak,
			MaxLength: e.Linear.MaxLength,
			Directed:  !e.Linear.Undirected,
		}
		if err := l.Validate(); err != nil {
			return nil, &ConfigError{Field: "linear", Message: err.Error()}
		}
		c = l
	default:
		return nil, &ConfigError{Field: "chemistry", Message: fmt.Sprintf("unknown chemistry %q", e.Chemistry)}
	}
	if e.Arity != nil {
		d, err := dist.Ints(e.Arity)
		if err != nil {
			return nil, chem.NewInvariantError("arity", err)
		}
		c = achem.WithArity(c, d)
	}
	return c, nil
}

// InitialPool expands Pool into species, sorted by name so the pool order
// does not depend on map iteration.
func (e *Experiment) InitialPool() []chem.Species {
	var pool []chem.Species
	for _, name := range slices.Sorted(maps.Keys(e.Pool)) {
		s := chem.NewSpecies(name)
		for range e.Pool[name] {
			pool = append(pool, s)
		}
	}
	return pool
}

// Options returns the reactor options implied by the experiment. Callers
// append their own (logger, observer, clock).
func (e *Experiment) Options() []reactor.Option {
	opts := []reactor.Option{reactor.WithSeed(e.Seed)}
	if e.Temperature > 0 {
		opts = append(opts, reactor.WithTemperature(e.Temperature))
	}
	if e.Workers > 0 {
		opts = append(opts, reactor.WithWorkers(e.Workers))
	}
	if e.Arity != nil {
		opts = append(opts, reactor.WithSampledArity())
	}
	return opts
}

// BucketOptions returns the reconstruction options.
func (e *Experiment) BucketOptions() []bucket.Option {
	if e.Estimator == "" {
		return nil
	}
	est, err := bucket.ParseEstimator(e.Estimator)
	if err != nil {
		return nil
	}
	return []bucket.Option{bucket.WithEstimator(est)}
}

// Build validates the experiment and constructs its reactor.
func (e *Experiment) Build(opts ...reactor.Option) (reactor.Reactor, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	rule, err := e.Rule()
	if err != nil {
		return nil, err
	}
	kind, _ := reactor.ParseKind(e.Reactor)
	return reactor.Build(kind, rule, e.InitialPool(), append(e.Options(), opts...)...)
}

// Run builds the reactor and drains it into a Bucket.
func (e *Experiment) Run(opts ...reactor.Option) (*bucket.Bucket, error) {
	r, err := e.Build(opts...)
	if err != nil {
		return nil, err
	}
	return reactor.Run(r, e.Budget, e.BucketOptions()...)
}

// Hash identifies the experiment's simulation inputs. Two experiments with
// the same hash and seed produce the same event stream. Name and workers are
// left out: neither changes the events.
func (e *Experiment) Hash() (string, error) {
	pool := make(map[string]any, len(e.Pool))
	for name, n := range e.Pool {
		pool[name] = n
	}
	doc := map[string]any{
		"chemistry":   e.chemistryKind(),
		"reactor":     e.Reactor,
		"pool":        pool,
		"budget":      formatFloat(e.Budget),
		"seed":        strconv.FormatUint(e.Seed, 10),
		"temperature": formatFloat(e.Temperature),
	}
	if n, err := e.ReactionNetwork(); err != nil {
		return "", err
	} else if n != nil {
		doc["network"] = n.Text()
	}
	if e.Linear != nil {
		doc["linear"] = map[string]any{
			"pform":      formatFloat(e.Linear.PForm),
			"pbreak":     formatFloat(e.Linear.PBreak),
			"max_length": e.Linear.MaxLength,
			"undirected": e.Linear.Undirected,
		}
	}
	if e.Arity != nil {
		d, err := dist.Ints(e.Arity)
		if err != nil {
			return "", err
		}
		doc["arity"] = d.String()
	}
	return canon.Hash(canon.DomainRun, doc)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
