package persist

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/livemeasure/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func resetManager() {
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &MeasureStoreManager{}
}

func TestInitStore(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		resetManager()
		path := filepath.Join(t.TempDir(), "measures.db")
		require.NoError(t, InitStore(schema.SQLiteBackend, path))
		require.NotNil(t, Manager.GetMeasureStore())
		CloseStore()

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager()
		path := filepath.Join(t.TempDir(), "measures.db")
		assert.NoError(t, InitStore(schema.SQLiteBackend, path))
		first := Manager.GetMeasureStore()
		assert.NoError(t, InitStore(schema.SQLiteBackend, path))
		assert.Same(t, first, Manager.GetMeasureStore())
		CloseStore()
		CloseStore()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager()
		require.NoError(t, InitStore(schema.NoneBackend, ""))
		require.NotNil(t, Manager.GetMeasureStore())
		CloseStore()
	})

	t.Run("failure leaves manager empty", func(t *testing.T) {
		resetManager()
		err := InitStore("oracle", "")
		assert.ErrorContains(t, err, "failed to initialize measure store")
		assert.Nil(t, Manager.GetMeasureStore())
	})
}

func TestClearStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measures.db")
	store, err := NewMeasureStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearStore(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	assert.NoError(t, ClearStore(schema.SQLiteBackend, path, ""))
	assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	assert.ErrorContains(t, ClearStore("oracle", "", ""), "unsupported store backend")
}

func TestMigrateStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measures.db")

	require.NoError(t, MigrateStore(schema.SQLiteBackend, path, -1))
	// Already at the latest version
	require.NoError(t, MigrateStore(schema.SQLiteBackend, path, -1))
	require.NoError(t, MigrateStore(schema.SQLiteBackend, path, 1))
	require.NoError(t, MigrateStore(schema.SQLiteBackend, path, 0))
	require.NoError(t, MigrateStore(schema.SQLiteBackend, path, 2))

	store, err := NewMeasureStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	_, err = store.BeginRun(time.Now(), nil)
	assert.NoError(t, err)

	assert.ErrorContains(t, MigrateStore(schema.NoneBackend, "", -1), "not supported")
}

func TestExecuteStoreExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteStoreExport(&MockMeasureStore{}, ""), "--output-file is required")
	})

	t.Run("empty store", func(t *testing.T) {
		store := &MockMeasureStore{}
		store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true}, nil)
		assert.ErrorContains(t, ExecuteStoreExport(store, "out"), "no compute runs found")
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockMeasureStore{}
		store.On("GetStatus").Return(schema.StoreStatus{}, errors.New("boom"))
		assert.ErrorContains(t, ExecuteStoreExport(store, "out"), "boom")
	})

	t.Run("writes both files", func(t *testing.T) {
		store := newSQLiteStore(t)
		runID, err := store.BeginRun(time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordMeasures(runID, "payments", sampleMeasures(1, schema.RatingA), time.Now()))
		require.NoError(t, store.EndRun(runID, time.Now(), 1))

		out := filepath.Join(t.TempDir(), "export")
		require.NoError(t, ExecuteStoreExport(store, out))
		for _, suffix := range []string{".runs.parquet", ".measures.parquet"} {
			info, err := os.Stat(out + suffix)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		}
	})

	t.Run("measure query failure", func(t *testing.T) {
		store := &MockMeasureStore{}
		store.On("GetStatus").Return(schema.StoreStatus{TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return([]schema.RunRecord{{RunID: 1}}, nil)
		store.On("GetAllMeasures").Return(nil, errors.New("disk"))
		err := ExecuteStoreExport(store, filepath.Join(t.TempDir(), "export"))
		assert.ErrorContains(t, err, "failed to retrieve measures")
		store.AssertNotCalled(t, "Close")
	})
}

func TestPrintStoreStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintStoreStatus(&buf, schema.StoreStatus{Backend: "none"})
	assert.Equal(t, "Store Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintStoreStatus(&buf, schema.StoreStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalRuns:       2,
		LastRunID:       2,
		LastRunTime:     time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC),
		OldestRunTime:   time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC),
		TotalComponents: 3,
		TableSizes:      map[string]int64{measuresTable: 40, runsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2\n")
	assert.Contains(t, out, "Last Run: 2025-11-02 08:00:00\n")
	assert.Contains(t, out, "Total Components: 3\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(measuresTable)), bytes.Index(buf.Bytes(), []byte(runsTable)))
}

func TestMockStoreManager(t *testing.T) {
	store := &MockMeasureStore{}
	mgr := &MockStoreManager{}
	mgr.On("GetMeasureStore").Return(store)
	assert.Same(t, store, mgr.GetMeasureStore())
	mgr.AssertExpectations(t)
	store.AssertNotCalled(t, "BeginRun", mock.Anything, mock.Anything)
}
