package persist

import (
	"time"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetMeasureStore implements the StoreManager interface.
func (m *MockStoreManager) GetMeasureStore() contract.MeasureStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MeasureStore)
	return store
}

// MockMeasureStore is a mock implementation of MeasureStore for testing.
type MockMeasureStore struct {
	mock.Mock
}

var _ contract.MeasureStore = &MockMeasureStore{} // Compile-time check

// BeginRun implements the MeasureStore interface.
func (m *MockMeasureStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the MeasureStore interface.
func (m *MockMeasureStore) EndRun(runID int64, endTime time.Time, totalComponents int) error {
	args := m.Called(runID, endTime, totalComponents)
	return args.Error(0)
}

// RecordMeasures implements the MeasureStore interface.
func (m *MockMeasureStore) RecordMeasures(runID int64, component string, measures []schema.Measure, recordedAt time.Time) error {
	args := m.Called(runID, component, measures, recordedAt)
	return args.Error(0)
}

// LatestMeasures implements the MeasureStore interface.
func (m *MockMeasureStore) LatestMeasures(component string) ([]schema.Measure, error) {
	args := m.Called(component)
	measures, _ := args.Get(0).([]schema.Measure)
	return measures, args.Error(1)
}

// ApplyDiff implements the MeasureStore interface.
func (m *MockMeasureStore) ApplyDiff(component string, metric string, delta float64) error {
	args := m.Called(component, metric, delta)
	return args.Error(0)
}

// GetStatus implements the MeasureStore interface.
func (m *MockMeasureStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// GetAllRuns implements the MeasureStore interface.
func (m *MockMeasureStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllMeasures implements the MeasureStore interface.
func (m *MockMeasureStore) GetAllMeasures() ([]schema.MeasureRecord, error) {
	args := m.Called()
	measures, _ := args.Get(0).([]schema.MeasureRecord)
	return measures, args.Error(1)
}

// Close implements the MeasureStore interface.
func (m *MockMeasureStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
