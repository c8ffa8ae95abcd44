package reactor

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

// ErrInvalidBudget is yielded when Do is given a negative or NaN budget.
var ErrInvalidBudget = errors.New("budget must be a non-negative number")

// Reactor turns a chemistry and a molecule pool into a stream of events.
//
// Do returns a lazy sequence that extends the running budget by budget and
// simulates until it is spent. Nothing happens until the sequence is
// iterated, and stopping iteration early leaves the reactor consistent so a
// later Do resumes where it stopped. Each returned sequence can be iterated
// once. Reactors are not safe for concurrent use.
type Reactor interface {
	Do(budget float64) iter.Seq2[bucket.Event, error]
	State() State
	Kind() Kind
}

// Kind names a reactor strategy.
type Kind string

const (
	KindEnumerate Kind = "enumerate"
	KindIterative Kind = "iterative"
	KindStepwise  Kind = "stepwise"
	KindGillespie Kind = "gillespie"
)

// Kinds lists every reactor kind.
var Kinds = []Kind{KindEnumerate, KindIterative, KindStepwise, KindGillespie}

// ParseKind validates a reactor kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown reactor kind %q", s)
}

// State is the lifecycle stage of a reactor.
type State int

const (
	StateConstructed State = iota
	StateRunning
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Observer is notified of every emitted event and every draw skipped for
// lack of molecules. Calls happen on the goroutine iterating the reactor.
type Observer interface {
	Observe(kind Kind, e bucket.Event)
	Skipped(kind Kind)
}

type nopObserver struct{}

func (nopObserver) Observe(Kind, bucket.Event) {}
func (nopObserver) Skipped(Kind)               {}

// DefaultTemperature is the Gillespie interval scaling.
const DefaultTemperature = 100.0

// DefaultArity is the fixed reactant count of Iterative and Stepwise draws.
const DefaultArity = 2

type config struct {
	logger      *slog.Logger
	observer    Observer
	rng         *rand.Rand
	workers     int
	arity       int
	sampled     bool
	temperature float64
	clock       func() time.Time
}

// Option configures a reactor.
type Option func(*config)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithObserver installs an event observer.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithRand sets the random source. Without it a randomly seeded source is
// created and runs are not reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(c *config) { c.rng = rng }
}

// WithSeed is shorthand for WithRand with a PCG source seeded by seed.
func WithSeed(seed uint64) Option {
	return WithRand(NewRand(seed))
}

// WithWorkers sets how many goroutines evaluate independent reactant groups
// within one Stepwise tick or Enumerate round. Values below 2 evaluate
// sequentially. Results are identical either way.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithArity fixes the reactant count of Iterative and Stepwise draws.
func WithArity(n int) Option {
	return func(c *config) { c.arity, c.sampled = n, false }
}

// WithSampledArity makes Iterative and Stepwise draw each reactant count
// from the chemistry's arity distribution.
func WithSampledArity() Option {
	return func(c *config) { c.sampled = true }
}

// WithTemperature sets the Gillespie interval scaling.
func WithTemperature(t float64) Option {
	return func(c *config) { c.temperature = t }
}

// WithClock stamps events with wall-clock seconds from now.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.clock = now }
}

// NewRand returns a PCG-backed source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newConfig(opts []Option) config {
	c := config{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:    nopObserver{},
		arity:       DefaultArity,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

// base holds the state shared by every reactor.
type base struct {
	cfg   config
	kind  Kind
	rule  achem.Chemistry
	arity dist.Dist[int]
	state State
	pool  *bag.OrderedBag[chem.Species]
}

func newBase(kind Kind, c achem.Chemistry, pool []chem.Species, opts []Option) (base, error) {
	if c == nil {
		return base{}, fmt.Errorf("%s reactor: nil chemistry", kind)
	}
	b := base{
		cfg:   newConfig(opts),
		kind:  kind,
		rule:  c,
		arity: c.Arity(),
		pool:  bag.NewOrderedBag(pool...),
	}
	if b.cfg.workers < 1 {
		b.cfg.workers = 1
	}
	b.cfg.logger = b.cfg.logger.With("reactor", string(kind))
	return b, nil
}

// validateArity fails fast on a malformed arity distribution.
func (b *base) validateArity() error {
	if err := b.arity.Validate(); err != nil {
		return chem.NewInvariantError(fmt.Sprintf("%s reactor: arity %v", b.kind, b.arity), err)
	}
	for _, n := range b.arity.Support() {
		if n < 0 {
			return chem.NewInvariantError(fmt.Sprintf("%s reactor: negative arity %d", b.kind, n), dist.ErrInvalid)
		}
	}
	return nil
}

func (b *base) validateFixedArity() error {
	if b.cfg.sampled {
		if err := b.validateArity(); err != nil {
			return err
		}
		if support := b.arity.Support(); support[0] < 1 {
			return chem.NewInvariantError(fmt.Sprintf("%s reactor: arity %d", b.kind, support[0]), dist.ErrInvalid)
		}
		return nil
	}
	if b.cfg.arity < 1 {
		return chem.NewInvariantError(fmt.Sprintf("%s reactor: arity %d", b.kind, b.cfg.arity), dist.ErrInvalid)
	}
	return nil
}

func (b *base) State() State { return b.state }
func (b *base) Kind() Kind   { return b.kind }

// Pool returns the molecules currently in the reactor.
func (b *base) Pool() []chem.Species { return b.pool.Items() }

// drawArity returns the reactant count for the next draw.
func (b *base) drawArity() int {
	if b.cfg.sampled {
		return b.arity.Sample(b.cfg.rng)
	}
	return b.cfg.arity
}

// sequence wraps body as a single-use event sequence that validates the
// budget and moves the reactor out of the constructed state.
func (b *base) sequence(budget float64, body func(budget float64, yield func(bucket.Event, error) bool)) iter.Seq2[bucket.Event, error] {
	used := false
	return func(yield func(bucket.Event, error) bool) {
		if used {
			return
		}
		used = true
		if budget < 0 || math.IsNaN(budget) {
			yield(bucket.Event{}, fmt.Errorf("%s reactor: %w: %v", b.kind, ErrInvalidBudget, budget))
			return
		}
		if b.state == StateConstructed {
			b.state = StateRunning
		}
		body(budget, yield)
	}
}

func (b *base) event(t float64, reactants, products chem.Molecules) bucket.Event {
	e := bucket.NewEvent(t, reactants, products)
	if b.cfg.clock != nil {
		e = e.WithWall(b.cfg.clock().Unix())
	}
	return e
}

func (b *base) observe(e bucket.Event) {
	b.cfg.observer.Observe(b.kind, e)
}

func (b *base) skip(t float64, want int) {
	b.cfg.logger.Debug("skipped draw", "time", t, "arity", want, "pool", b.pool.Len())
	b.cfg.observer.Skipped(b.kind)
}

// Build constructs a reactor of the given kind.
func Build(kind Kind, c achem.Chemistry, pool []chem.Species, opts ...Option) (Reactor, error) {
	switch kind {
	case KindEnumerate:
		return NewEnumerate(c, pool, opts...)
	case KindIterative:
		return NewIterative(c, pool, opts...)
	case KindStepwise:
		return NewStepwise(c, pool, opts...)
	case KindGillespie:
		return NewGillespie(c, pool, opts...)
	}
	return nil, fmt.Errorf("unknown reactor kind %q", kind)
}

// Run drains r.Do(budget) into a Bucket.
func Run(r Reactor, budget float64, opts ...bucket.Option) (*bucket.Bucket, error) {
	return bucket.Collect(r.Do(budget), opts...)
}
