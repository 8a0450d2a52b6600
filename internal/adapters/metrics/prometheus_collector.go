package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "placement"
	// Subsystem for engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPlacementCollector is set by SetGlobalPlacementCollector when metrics are enabled
	globalPlacementCollector PlacementMetricsRecorder
)

// PlacementMetricsRecorder defines the interface for recording placement events.
// Command handlers record through the package level Record* functions.
type PlacementMetricsRecorder interface {
	RecordPlacement(player, destination string, units, placementsMade int)
	RecordRejection(player, step string)
	RecordUndo(player string, placementsMade int)
	RecordEndOfStep(player string, discarded int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalPlacementCollector sets the global placement metrics collector
func SetGlobalPlacementCollector(collector PlacementMetricsRecorder) {
	globalPlacementCollector = collector
}

// RecordPlacement records a committed placement globally
func RecordPlacement(player, destination string, units, placementsMade int) {
	if globalPlacementCollector != nil {
		globalPlacementCollector.RecordPlacement(player, destination, units, placementsMade)
	}
}

// RecordRejection records a rejected placement request globally
func RecordRejection(player, step string) {
	if globalPlacementCollector != nil {
		globalPlacementCollector.RecordRejection(player, step)
	}
}

// RecordUndo records an undone placement globally
func RecordUndo(player string, placementsMade int) {
	if globalPlacementCollector != nil {
		globalPlacementCollector.RecordUndo(player, placementsMade)
	}
}

// RecordEndOfStep records the end of a placement step globally
func RecordEndOfStep(player string, discarded int) {
	if globalPlacementCollector != nil {
		globalPlacementCollector.RecordEndOfStep(player, discarded)
	}
}
