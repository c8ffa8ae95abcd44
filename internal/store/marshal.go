package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// Reactant and product sides are stored as their multiset keys, the
// canonical JSON array of sorted species.

func unmarshalSide(key string) (chem.Molecules, error) {
	var names []string
	if err := json.Unmarshal([]byte(key), &names); err != nil {
		return chem.Molecules{}, fmt.Errorf("unmarshal side %q: %w", key, err)
	}
	return chem.Mols(names...), nil
}

func rateColumn(e bucket.Event) sql.NullFloat64 {
	rate, ok := e.RateConstant()
	return sql.NullFloat64{Float64: rate, Valid: ok}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (bucket.Event, error) {
	var (
		simTime             float64
		wall                int64
		reactants, products string
		rate                sql.NullFloat64
	)
	if err := row.Scan(&simTime, &wall, &reactants, &products, &rate); err != nil {
		return bucket.Event{}, fmt.Errorf("scan event: %w", err)
	}
	r, err := unmarshalSide(reactants)
	if err != nil {
		return bucket.Event{}, err
	}
	p, err := unmarshalSide(products)
	if err != nil {
		return bucket.Event{}, err
	}
	e := bucket.NewEvent(simTime, r, p).WithWall(wall)
	if rate.Valid {
		e = e.WithRate(rate.Float64)
	}
	return e, nil
}

func scanRun(row scanner) (Run, error) {
	var (
		r          Run
		seed       string
		experiment string
	)
	err := row.Scan(&r.ID, &r.Name, &r.Reactor, &seed, &r.Budget, &r.InputHash,
		&experiment, &r.EventCount, &r.NetworkHash, &r.Seq)
	if err != nil {
		return Run{}, err
	}
	if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Run{}, fmt.Errorf("run %s: seed %q: %w", r.ID, seed, err)
	}
	r.Experiment = []byte(experiment)
	return r, nil
}
