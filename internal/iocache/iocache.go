// Package iocache persists workspace state and check history in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/csmstyle/internal/contract"
)

// StoreManagerImpl holds the state and history stores for the process.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	state        contract.StateStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetStateStore returns the state StateStore.
func (mgr *StoreManagerImpl) GetStateStore() contract.StateStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.state
}

// GetHistoryStore returns the HistoryStore, or nil when history is disabled.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
