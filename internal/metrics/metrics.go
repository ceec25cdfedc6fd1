// Package metrics exports run counters in the Prometheus text format. There is
// no HTTP listener: the collector is written to a textfile for node_exporter.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/talgya/breakroom/internal/agents"
	"github.com/talgya/breakroom/internal/engine"
)

const (
	namespace = "breakroom"

	LabelKind     = "kind"
	LabelCategory = "category"
	LabelState    = "state"
)

// Collector holds the metrics of one run on its own registry.
type Collector struct {
	Registry *prometheus.Registry

	Events      *prometheus.CounterVec
	MoneyEarned prometheus.Counter
	MoneyLost   prometheus.Counter
	Balance     prometheus.Gauge
	Rings       prometheus.Gauge
	Ticks       prometheus.Gauge
	Workers     *prometheus.GaugeVec
	CapacityMax prometheus.Gauge
	CapacityUse prometheus.Gauge
	RouteCache  *prometheus.GaugeVec
}

// NewCollector registers every metric on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		Registry: reg,
		Events: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Simulation events by kind",
			},
			[]string{LabelKind, LabelCategory},
		),
		MoneyEarned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "money_earned_total",
			Help:      "Money credited for served workers",
		}),
		MoneyLost: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "money_lost_total",
			Help:      "Money debited for expired workers",
		}),
		Balance: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance",
			Help:      "Current ledger balance",
		}),
		Rings: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rings",
			Help:      "Generated ring count",
		}),
		Ticks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ticks",
			Help:      "Ticks processed",
		}),
		Workers: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workers",
				Help:      "Live workers by state",
			},
			[]string{LabelState},
		),
		CapacityMax: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upgrade_capacity",
			Help:      "Maximum break shops that may be opened",
		}),
		CapacityUse: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upgrade_capacity_used",
			Help:      "Break shops opened so far, the starting one included",
		}),
		RouteCache: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "route_cache_lookups",
				Help:      "Route cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveEvents counts a batch of events.
func (c *Collector) ObserveEvents(events []engine.Event) {
	for _, e := range events {
		c.Events.WithLabelValues(e.Kind.String(), e.Category()).Inc()
		if e.Kind != engine.EventMoneyChanged {
			continue
		}
		if e.Delta > 0 {
			c.MoneyEarned.Add(float64(e.Delta))
		} else {
			c.MoneyLost.Add(float64(-e.Delta))
		}
	}
}

// ObserveState samples the simulation's gauges.
func (c *Collector) ObserveState(sim *engine.Simulation) {
	c.Balance.Set(float64(sim.Balance()))
	c.Rings.Set(float64(sim.Rings()))
	c.Ticks.Set(float64(sim.CurrentTick()))

	used, limit := sim.Capacity()
	c.CapacityUse.Set(float64(used))
	c.CapacityMax.Set(float64(limit))

	counts := map[agents.State]int{}
	for _, w := range sim.Workers() {
		counts[w.State]++
	}
	for _, st := range []agents.State{agents.StateTraveling, agents.StateWaiting, agents.StateServed} {
		c.Workers.WithLabelValues(st.String()).Set(float64(counts[st]))
	}

	hits, misses := sim.RouteStats()
	c.RouteCache.WithLabelValues("hit").Set(float64(hits))
	c.RouteCache.WithLabelValues("miss").Set(float64(misses))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
