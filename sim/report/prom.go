package report

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// PromExporter exposes the metrics of a finished run as Prometheus gauges.
type PromExporter struct {
	orders   *prometheus.GaugeVec
	distance *prometheus.GaugeVec
	idle     *prometheus.GaugeVec
	unitDist *prometheus.GaugeVec
	makespan prometheus.Gauge
}

// NewPromExporter registers the run gauges on reg. If reg is nil, the default
// registerer is used.
func NewPromExporter(reg prometheus.Registerer, runID, policy string) (*PromExporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	constLabels := prometheus.Labels{"run_id": runID, "policy": policy}
	e := &PromExporter{
		orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "dispatch_orders",
			Help:        "Orders by final state",
			ConstLabels: constLabels,
		}, []string{"state"}),
		distance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "dispatch_distance_total",
			Help:        "Fleet distance travelled, by leg kind",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		idle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "dispatch_idle_seconds",
			Help:        "Fleet idle time, by kind",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		unitDist: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "dispatch_unit_distance_total",
			Help:        "Distance travelled per transport unit",
			ConstLabels: constLabels,
		}, []string{"unit_id"}),
		makespan: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "dispatch_makespan_seconds",
			Help:        "Time from the first served creation to the last delivery",
			ConstLabels: constLabels,
		}),
	}
	for _, c := range []prometheus.Collector{e.orders, e.distance, e.idle, e.unitDist, e.makespan} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering dispatch metrics: %w", err)
		}
	}
	return e, nil
}

// Observe sets every gauge from m.
func (e *PromExporter) Observe(m *sim.Metrics) {
	e.orders.WithLabelValues("served").Set(float64(m.ServedOrders))
	e.orders.WithLabelValues("unserved").Set(float64(m.UnservedOrders))
	e.orders.WithLabelValues("forced").Set(float64(m.ForcedOrders))
	e.orders.WithLabelValues("miscosted").Set(float64(m.Miscosted))
	e.orders.WithLabelValues("bundles").Set(float64(m.Bundles))

	e.distance.WithLabelValues("unloaded").Set(m.UnloadedDistance)
	e.distance.WithLabelValues("loaded").Set(m.LoadedDistance)

	e.idle.WithLabelValues("stopped").Set(m.StoppedIdleSeconds)
	e.idle.WithLabelValues("moving").Set(m.MovingIdleSeconds)

	for _, u := range m.Units {
		e.unitDist.WithLabelValues(strconv.Itoa(u.UnitID)).Set(u.TotalDistance)
	}
	e.makespan.Set(m.MakespanSeconds)
}

// WritePromTextfile writes m in the Prometheus text format to path, for
// pickup by a node_exporter textfile collector.
func WritePromTextfile(path, runID, policy string, m *sim.Metrics) error {
	reg := prometheus.NewRegistry()
	e, err := NewPromExporter(reg, runID, policy)
	if err != nil {
		return err
	}
	e.Observe(m)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing prometheus textfile: %w", err)
	}
	return nil
}
