// SPDX-License-Identifier: Apache-2.0

// Package monitoring wraps the Prometheus client to expose tally metrics
// from the demo (§11 Domain Stack).
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"

	"github.com/semi-e090/substrate-core/internal/conf"
)

// Registry is a Prometheus registry that stamps every gathered metric with
// the configured static labels, so multiple demo instances can be
// distinguished in a shared Prometheus.
type Registry struct {
	*prometheus.Registry
	config conf.MonitoringConfig
}

// NewRegistry creates a Registry pre-populated with the Go runtime and
// process collectors.
func NewRegistry(config conf.MonitoringConfig) *Registry {
	r := &Registry{
		Registry: prometheus.NewRegistry(),
		config:   config,
	}
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// Gather stamps the configured static labels onto every metric family
// before returning it.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	families, err := r.Registry.Gather()
	if err != nil {
		return nil, err
	}
	for name, value := range r.config.Labels {
		for _, family := range families {
			for _, metric := range family.Metric {
				metric.Label = append(metric.Label, &dto.LabelPair{Name: &name, Value: &value})
			}
		}
	}
	return families, nil
}

// TallyCollector exposes a scheduler.Tally's bucket counts as Prometheus
// gauges. It is created once and refreshed in place by Update, which resets
// every gauge vector before setting the new counts, since a Tally itself is
// a one-shot accumulator rebuilt on each tick (§4.8).
type TallyCollector struct {
	sts, sps, sjs *prometheus.GaugeVec
}

// NewTallyCollector builds a TallyCollector registered under the given
// metric name prefix.
func NewTallyCollector(namePrefix string) *TallyCollector {
	return &TallyCollector{
		sts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: namePrefix + "_sts_count",
			Help: "Number of tracked substrates in each transport state.",
		}, []string{"sts"}),
		sps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: namePrefix + "_sps_count",
			Help: "Number of tracked substrates in each process state.",
		}, []string{"sps"}),
		sjs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: namePrefix + "_sjs_count",
			Help: "Number of tracked substrates in each job state.",
		}, []string{"sjs"}),
	}
}

// Describe implements prometheus.Collector.
func (c *TallyCollector) Describe(ch chan<- *prometheus.Desc) {
	c.sts.Describe(ch)
	c.sps.Describe(ch)
	c.sjs.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *TallyCollector) Collect(ch chan<- prometheus.Metric) {
	c.sts.Collect(ch)
	c.sps.Collect(ch)
	c.sjs.Collect(ch)
}

// tallyCounts is the subset of *scheduler.Tally the collector reads. Defined
// as an interface here (rather than importing pkg/scheduler) to avoid a
// monitoring→scheduler dependency the demo doesn't otherwise need.
type tallyCounts interface {
	STSCounts() map[string]int
	SPSCounts() map[string]int
	SJSCounts() map[string]int
}

// Update replaces the collector's gauge values with the given tally
// snapshot.
func (c *TallyCollector) Update(t tallyCounts) {
	c.sts.Reset()
	for name, v := range t.STSCounts() {
		c.sts.WithLabelValues(name).Set(float64(v))
	}
	c.sps.Reset()
	for name, v := range t.SPSCounts() {
		c.sps.WithLabelValues(name).Set(float64(v))
	}
	c.sjs.Reset()
	for name, v := range t.SJSCounts() {
		c.sjs.WithLabelValues(name).Set(float64(v))
	}
}
