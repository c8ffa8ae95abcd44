package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/achemkit/internal/experiment"
)

// Scenario is one simulation test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Experiment is the inline experiment. Exactly one of Experiment and
	// ExperimentFile must be set.
	Experiment *experiment.Experiment `yaml:"experiment,omitempty"`

	// ExperimentFile is a CUE experiment, relative to the scenario file.
	ExperimentFile string `yaml:"experiment_file,omitempty"`

	// Assertions are checked in order; all failures are reported.
	Assertions []Assertion `yaml:"assertions"`

	// RunID fixes the stored run ID. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Assertion checks one property of a finished run.
type Assertion struct {
	// Type selects the check; see the package documentation.
	Type string `yaml:"type"`

	// Count is used by event_count, elastic_count and reaction_count.
	Count *int `yaml:"count,omitempty"`

	// Reactants and Products are used by event_contains.
	Reactants []string `yaml:"reactants,omitempty"`
	Products  []string `yaml:"products,omitempty"`

	// Network is .chem text, used by network_equals.
	Network string `yaml:"network,omitempty"`

	// Counts is used by final_counts.
	Counts map[string]int `yaml:"counts,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount    = "event_count"
	AssertElasticCount  = "elastic_count"
	AssertEventContains = "event_contains"
	AssertTimeOrdered   = "time_ordered"
	AssertNetworkSubset = "network_subset"
	AssertNetworkEquals = "network_equals"
	AssertReactionCount = "reaction_count"
	AssertFinalCounts   = "final_counts"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	dir := filepath.Dir(path)
	if scenario.ExperimentFile != "" && !filepath.IsAbs(scenario.ExperimentFile) {
		scenario.ExperimentFile = filepath.Join(dir, scenario.ExperimentFile)
	}
	if scenario.Experiment != nil {
		scenario.Experiment.SetDir(dir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// experiment resolves the scenario's experiment, loading the CUE file if
// needed. An inline experiment without a name takes the scenario's.
func (s *Scenario) experiment() (*experiment.Experiment, error) {
	if s.ExperimentFile != "" {
		return experiment.Load(s.ExperimentFile)
	}
	e := *s.Experiment
	if e.Name == "" {
		e.Name = s.Name
	}
	return &e, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Experiment == nil && s.ExperimentFile == "":
		return fmt.Errorf("experiment or experiment_file is required")
	case s.Experiment != nil && s.ExperimentFile != "":
		return fmt.Errorf("experiment and experiment_file are mutually exclusive")
	case s.ExperimentFile != "":
		if _, err := os.Stat(s.ExperimentFile); os.IsNotExist(err) {
			return fmt.Errorf("experiment file not found: %s", s.ExperimentFile)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventCount, AssertElasticCount, AssertReactionCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertEventContains:
		if len(a.Reactants) == 0 && len(a.Products) == 0 {
			return fmt.Errorf("assertions[%d]: reactants or products required for event_contains", index)
		}
	case AssertNetworkEquals:
		// An empty network is a valid expectation.
	case AssertFinalCounts:
		if len(a.Counts) == 0 {
			return fmt.Errorf("assertions[%d]: counts is required for final_counts", index)
		}
	case AssertTimeOrdered, AssertNetworkSubset:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
