package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/reactor"
	"github.com/roach88/achemkit/internal/runid"
	"github.com/roach88/achemkit/internal/store"
	"github.com/roach88/achemkit/internal/testutil"
)

const defaultRunID = "test-run-default"

// Harness runs scenarios against a store with a deterministic clock and
// fixed run IDs.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	ids    runid.Generator
	logger *slog.Logger
}

// Run executes a scenario in a fresh in-memory database and evaluates its
// assertions. The returned error covers setup and simulation failures;
// assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	id := scenario.RunID
	if id == "" {
		id = defaultRunID
	}
	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		ids:    runid.NewFixed(id),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	exp, err := scenario.experiment()
	if err != nil {
		return nil, err
	}
	exp, err = exp.Inline()
	if err != nil {
		return nil, err
	}

	b, err := exp.Run(reactor.WithClock(h.clock.Now), reactor.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", scenario.Name, err)
	}

	hash, err := exp.Hash()
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(exp)
	if err != nil {
		return nil, fmt.Errorf("encode experiment: %w", err)
	}
	run, err := h.store.WriteRun(ctx, store.Run{
		ID:         h.ids.New(),
		Name:       exp.Name,
		Reactor:    exp.Reactor,
		Seed:       exp.Seed,
		Budget:     exp.Budget,
		InputHash:  hash,
		Experiment: doc,
	}, b.Events())
	if err != nil {
		return nil, err
	}

	events, err := h.store.ReadEvents(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	net, err := bucket.New(events, exp.BucketOptions()...).ReactionNet()
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", scenario.Name, err)
	}
	source, err := exp.ReactionNetwork()
	if err != nil {
		return nil, err
	}

	result := NewResult(run.ID)
	result.Events = events
	result.Network = net
	result.Source = source
	result.Pool = exp.InitialPool()

	for _, a := range scenario.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
	h.logger.Debug("scenario finished", "scenario", scenario.Name, "events", len(events), "pass", result.Pass)
	return result, nil
}
