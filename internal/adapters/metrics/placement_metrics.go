package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetricsCollector handles placement engine metrics
type PlacementMetricsCollector struct {
	placementsTotal *prometheus.CounterVec
	unitsPlaced     *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	undosTotal      *prometheus.CounterVec
	discardedUnits  *prometheus.CounterVec
	placementsMade  *prometheus.GaugeVec
}

// NewPlacementMetricsCollector creates a new placement metrics collector
func NewPlacementMetricsCollector() *PlacementMetricsCollector {
	return &PlacementMetricsCollector{
		placementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "placements_total",
				Help:      "Total number of committed placements by player and destination",
			},
			[]string{"player", "destination"},
		),
		unitsPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units_placed_total",
				Help:      "Total number of units placed from the held pool",
			},
			[]string{"player"},
		),
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejections_total",
				Help:      "Total number of rejected placement requests by validation step",
			},
			[]string{"player", "step"},
		),
		undosTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "undos_total",
				Help:      "Total number of undone placements",
			},
			[]string{"player"},
		),
		discardedUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "discarded_units_total",
				Help:      "Units produced but discarded unplaced at end of step",
			},
			[]string{"player"},
		),
		placementsMade: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "placements_made",
				Help:      "Placements committed in the current step",
			},
			[]string{"player"},
		),
	}
}

// Register registers all placement metrics with the Prometheus registry
func (c *PlacementMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.placementsTotal,
		c.unitsPlaced,
		c.rejectionsTotal,
		c.undosTotal,
		c.discardedUnits,
		c.placementsMade,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *PlacementMetricsCollector) RecordPlacement(player, destination string, units, placementsMade int) {
	c.placementsTotal.WithLabelValues(player, destination).Inc()
	c.unitsPlaced.WithLabelValues(player).Add(float64(units))
	c.placementsMade.WithLabelValues(player).Set(float64(placementsMade))
}

func (c *PlacementMetricsCollector) RecordRejection(player, step string) {
	c.rejectionsTotal.WithLabelValues(player, step).Inc()
}

func (c *PlacementMetricsCollector) RecordUndo(player string, placementsMade int) {
	c.undosTotal.WithLabelValues(player).Inc()
	c.placementsMade.WithLabelValues(player).Set(float64(placementsMade))
}

func (c *PlacementMetricsCollector) RecordEndOfStep(player string, discarded int) {
	c.discardedUnits.WithLabelValues(player).Add(float64(discarded))
	c.placementsMade.WithLabelValues(player).Set(0)
}
