// Package observability bundles the Prometheus metrics the schematic
// runtime reports and exposes them over HTTP.
package observability

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the runtime's Prometheus metrics. It satisfies the
// manager's Telemetry interface.
type Collector struct {
	gatherer prometheus.Gatherer

	SchematicsBuilt    prometheus.Counter
	BlocksInstantiated *prometheus.CounterVec
	StaggerPending     prometheus.Gauge
	Resyncs            prometheus.Counter
	Replacements       prometheus.Counter
}

// NewCollector registers the runtime metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	built := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schematics_built_total",
		Help: "Total number of completed schematic construction passes.",
	})
	built, err := registerCounter(reg, built, "schematics_built_total")
	if err != nil {
		return nil, err
	}

	blocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schematic_blocks_instantiated_total",
		Help: "Total number of instantiated blocks, labeled by block type.",
	}, []string{"block_type"})
	blocks, err = registerCounterVec(reg, blocks, "schematic_blocks_instantiated_total")
	if err != nil {
		return nil, err
	}

	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schematic_stagger_pending",
		Help: "Staggered network registrations currently queued.",
	})
	pending, err = registerGauge(reg, pending, "schematic_stagger_pending")
	if err != nil {
		return nil, err
	}

	resyncs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schematic_resyncs_total",
		Help: "Total number of resync passes.",
	})
	resyncs, err = registerCounter(reg, resyncs, "schematic_resyncs_total")
	if err != nil {
		return nil, err
	}

	replacements := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schematic_replacements_total",
		Help: "Total number of definition-changed instance replacements.",
	})
	replacements, err = registerCounter(reg, replacements, "schematic_replacements_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		SchematicsBuilt:    built,
		BlocksInstantiated: blocks,
		StaggerPending:     pending,
		Resyncs:            resyncs,
		Replacements:       replacements,
	}, nil
}

// RecordSchematicBuilt implements the manager Telemetry interface.
func (c *Collector) RecordSchematicBuilt() {
	if c != nil && c.SchematicsBuilt != nil {
		c.SchematicsBuilt.Inc()
	}
}

// RecordBlock implements the manager Telemetry interface.
func (c *Collector) RecordBlock(blockType string) {
	if c != nil && c.BlocksInstantiated != nil {
		c.BlocksInstantiated.WithLabelValues(blockType).Inc()
	}
}

// RecordStaggerPending implements the manager Telemetry interface.
func (c *Collector) RecordStaggerPending(delta int) {
	if c != nil && c.StaggerPending != nil {
		c.StaggerPending.Add(float64(delta))
	}
}

// RecordResync implements the manager Telemetry interface.
func (c *Collector) RecordResync() {
	if c != nil && c.Resyncs != nil {
		c.Resyncs.Inc()
	}
}

// RecordReplacement implements the manager Telemetry interface.
func (c *Collector) RecordReplacement() {
	if c != nil && c.Replacements != nil {
		c.Replacements.Inc()
	}
}

// Handler serves the collector's registry over HTTP.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return gauge, nil
}
