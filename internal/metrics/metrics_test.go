package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/reactor"
)

func TestObserver_Counts(t *testing.T) {
	o := NewObserver(prometheus.NewRegistry())

	o.Observe(reactor.KindIterative, bucket.NewEvent(0, chem.Mols("A", "B"), chem.Mols("C")))
	o.Observe(reactor.KindIterative, bucket.NewEvent(1.5, chem.Mols("A"), chem.Mols("A")))
	o.Skipped(reactor.KindIterative)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.Events.WithLabelValues("iterative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.Elastic.WithLabelValues("iterative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.Skipped.WithLabelValues("iterative")))
	assert.Equal(t, 1.5, testutil.ToFloat64(o.SimTime.WithLabelValues("iterative")))
}

func TestObserver_WiredIntoReactor(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	r, err := reactor.NewIterative(achem.Identity{}, chem.SpeciesOf("A", "B", "B"),
		reactor.WithSeed(1), reactor.WithObserver(o))
	require.NoError(t, err)
	_, err = reactor.Run(r, 5)
	require.NoError(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(o.Events.WithLabelValues("iterative")))
	assert.Equal(t, 5.0, testutil.ToFloat64(o.Elastic.WithLabelValues("iterative")))
}

func TestGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)
	o.Skipped(reactor.KindGillespie)
	o.Observe(reactor.KindStepwise, bucket.NewEvent(2, chem.Mols("A"), chem.Mols("B")))

	samples, err := Gather(reg)
	require.NoError(t, err)

	var names []string
	for _, s := range samples {
		names = append(names, s.String())
	}
	assert.Equal(t, []string{
		`achem_reactor_events_total{reactor="stepwise"} 1`,
		`achem_reactor_simulation_time{reactor="stepwise"} 2`,
		`achem_reactor_skipped_draws_total{reactor="gillespie"} 1`,
	}, names)
}
