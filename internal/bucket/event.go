package bucket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/achemkit/internal/chem"
)

// Event is a single reaction occurrence. Events are values and are never
// mutated after construction.
type Event struct {
	// Time is the simulated time of the reaction.
	Time float64

	Reactants chem.Molecules
	Products  chem.Molecules

	// Wall is the wall-clock time in Unix seconds, or 0 when not recorded.
	Wall int64

	rate    float64
	hasRate bool
}

// NewEvent returns an event with no explicit rate constant.
func NewEvent(time float64, reactants, products chem.Molecules) Event {
	return Event{Time: time, Reactants: reactants, Products: products}
}

// WithRate returns a copy of e carrying an explicit rate constant.
func (e Event) WithRate(rate float64) Event {
	e.rate, e.hasRate = rate, true
	return e
}

// WithWall returns a copy of e stamped with wall-clock seconds.
func (e Event) WithWall(wall int64) Event {
	e.Wall = wall
	return e
}

// RateConstant returns the explicit rate constant, if any.
func (e Event) RateConstant() (float64, bool) { return e.rate, e.hasRate }

// Reaction returns the reaction this event is an instance of.
func (e Event) Reaction() chem.Reaction {
	return chem.Reaction{Reactants: e.Reactants, Products: e.Products}
}

// Elastic reports whether the event left its reactants unchanged.
func (e Event) Elastic() bool { return e.Reactants.Equal(e.Products) }

// Less orders events by time only.
func (e Event) Less(other Event) bool { return e.Time < other.Time }

// Equal reports whether both events share time, reactants and products.
// Rate constants and wall time are not compared.
func (e Event) Equal(other Event) bool {
	return e.Time == other.Time && e.Reactants.Equal(other.Reactants) && e.Products.Equal(other.Products)
}

// Text renders e as one line of the event-log format:
//
//	WALLTIME SIMTIME REACTANTS -RATE> PRODUCTS
func (e Event) Text() string {
	arrow := "->"
	if e.hasRate {
		arrow = "-" + chem.FormatRate(e.rate) + ">"
	}
	parts := []string{strconv.FormatInt(e.Wall, 10), chem.FormatRate(e.Time)}
	if s := chem.JoinSpecies(e.Reactants); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, arrow)
	if s := chem.JoinSpecies(e.Products); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func (e Event) String() string {
	return fmt.Sprintf("Event(%s, %v, %v)", chem.FormatRate(e.Time), e.Reactants, e.Products)
}
