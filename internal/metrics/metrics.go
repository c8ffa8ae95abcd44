// Package metrics exposes reactor activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/reactor"
)

const (
	namespace = "achem"
	subsystem = "reactor"
)

// Observer implements reactor.Observer by counting events per reactor kind.
type Observer struct {
	Events  *prometheus.CounterVec
	Elastic *prometheus.CounterVec
	Skipped *prometheus.CounterVec
	SimTime *prometheus.GaugeVec
}

var _ reactor.Observer = (*Observer)(nil)

// NewObserver registers the reactor collectors on reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		// Labels: reactor (enumerate, iterative, stepwise, gillespie)
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "Reaction events emitted, elastic ones included",
		}, []string{"reactor"}),
		Elastic: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "elastic_events_total",
			Help:      "Events whose products equal their reactants",
		}, []string{"reactor"}),
		Skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_draws_total",
			Help:      "Draws abandoned because the pool held too few molecules",
		}, []string{"reactor"}),
		SimTime: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "simulation_time",
			Help:      "Simulation time of the latest event",
		}, []string{"reactor"}),
	}
}

func (o *Observer) Observe(kind reactor.Kind, e bucket.Event) {
	k := string(kind)
	o.Events.WithLabelValues(k).Inc()
	if e.Elastic() {
		o.Elastic.WithLabelValues(k).Inc()
	}
	o.SimTime.WithLabelValues(k).Set(e.Time)
}

func (o *Observer) Skipped(kind reactor.Kind) {
	o.Skipped.WithLabelValues(string(kind)).Inc()
}

// Sample is one gathered counter or gauge value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

func (s Sample) String() string {
	if s.Labels == "" {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, s.Labels, s.Value)
}

// Gather flattens the counters and gauges of g into samples sorted by name
// and labels.
func Gather(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				v = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, Sample{Name: mf.GetName(), Labels: labels(m), Value: v})
		}
	}
	slices.SortFunc(out, func(a, b Sample) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Labels, b.Labels)
	})
	return out, nil
}

func labels(m *dto.Metric) string {
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return strings.Join(pairs, ",")
}
