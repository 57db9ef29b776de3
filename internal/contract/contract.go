// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/livemeasure/schema"
)

// StoreManager defines the interface for reaching the measure store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetMeasureStore() MeasureStore
}

// MeasureStore defines the interface for tracking compute runs and storing measures.
type MeasureStore interface {
	// BeginRun creates a new compute run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the compute run with completion data
	EndRun(runID int64, endTime time.Time, totalComponents int) error

	// RecordMeasures stores the computed measures of one component
	RecordMeasures(runID int64, component string, measures []schema.Measure, recordedAt time.Time) error

	// LatestMeasures returns the measures of a component from its most recent run
	LatestMeasures(component string) ([]schema.Measure, error)

	// ApplyDiff adds delta to a numeric measure of a component in its most recent run
	ApplyDiff(component string, metric string, delta float64) error

	// GetStatus returns status information about the measure store
	GetStatus() (schema.StoreStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllMeasures returns every recorded measure
	GetAllMeasures() ([]schema.MeasureRecord, error)

	// Close closes the underlying connection
	Close() error
}
