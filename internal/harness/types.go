package harness

import (
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	// Events are the stored events, read back in emission order.
	Events []bucket.Event `json:"-"`

	// Network is the reaction network reconstructed from Events.
	Network *chem.Network `json:"-"`

	// Source is the experiment's network, nil for procedural chemistries.
	Source *chem.Network `json:"-"`

	// Pool is the initial pool.
	Pool []chem.Species `json:"-"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{Pass: true, RunID: runID, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Log renders the events in the event-log format.
func (r *Result) Log() string {
	return bucket.New(r.Events).Text()
}
