package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/achemkit/internal/bucket"
)

// ErrRunExists is returned when a run ID is written twice.
var ErrRunExists = errors.New("run already exists")

// Run is one stored simulation.
type Run struct {
	ID      string
	Name    string
	Reactor string
	Seed    uint64
	Budget  float64

	// InputHash identifies the simulation inputs; runs with equal hashes
	// and seeds are replays of each other.
	InputHash string

	// Experiment is the JSON encoding of the experiment, network inlined.
	Experiment []byte

	EventCount  int
	NetworkHash string

	// Seq is the store-assigned write order.
	Seq int64
}

// WriteRun inserts run and its events in a single transaction. Events are
// numbered in slice order. Run.Seq and Run.EventCount are assigned by the
// store; the returned Run carries them.
func (s *Store) WriteRun(ctx context.Context, run Run, events []bucket.Event) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	if exists > 0 {
		return Run{}, fmt.Errorf("write run %s: %w", run.ID, ErrRunExists)
	}

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(created_seq) FROM runs`).Scan(&maxSeq); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	run.Seq = maxSeq.Int64 + 1
	run.EventCount = len(events)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, reactor, seed, budget, input_hash, experiment, event_count, network_hash, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Name,
		run.Reactor,
		strconv.FormatUint(run.Seed, 10),
		run.Budget,
		run.InputHash,
		string(run.Experiment),
		run.EventCount,
		run.NetworkHash,
		run.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, sim_time, wall_time, reactants, products, rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write events: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		_, err := stmt.ExecContext(ctx, run.ID, i, e.Time, e.Wall,
			e.Reactants.Key(), e.Products.Key(), rateColumn(e))
		if err != nil {
			return Run{}, fmt.Errorf("write event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	return run, nil
}

// DeleteRun removes a run and its events. Deleting a missing run is not an
// error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
