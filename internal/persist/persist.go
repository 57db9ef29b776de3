// Package persist stores compute runs and their measures across database backends.
package persist

import (
	"sync"

	"github.com/huangsam/livemeasure/internal/contract"
)

// MeasureStoreManager holds the MeasureStore used by the application.
type MeasureStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	measures     contract.MeasureStore
}

var _ contract.StoreManager = &MeasureStoreManager{} // Compile-time check

// GetMeasureStore returns the MeasureStore.
func (mgr *MeasureStoreManager) GetMeasureStore() contract.MeasureStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.measures
}
