// Package memory implements the ability to keep a snapshot in memory.
package memory

import (
	"sync"

	"github.com/ardanlabs/mining/foundation/mining/storage"
)

// Memory represents the storage implementation for keeping the snapshot in
// memory. This implements the storage.Storage interface.
type Memory struct {
	mu     sync.RWMutex
	snap   storage.Snapshot
	exists bool
	writes int
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write replaces the snapshot held in memory.
func (m *Memory) Write(snap storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = copySnapshot(snap)
	m.exists = true
	m.writes++

	return nil
}

// Read returns a copy of the snapshot held in memory.
func (m *Memory) Read() (storage.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.exists {
		return storage.Snapshot{}, storage.ErrNotFound
	}

	return copySnapshot(m.snap), nil
}

// Reset forgets the snapshot.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = storage.Snapshot{}
	m.exists = false

	return nil
}

// Writes returns the number of snapshots written.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.writes
}

func copySnapshot(snap storage.Snapshot) storage.Snapshot {
	snap.Accounts = append([]storage.Account(nil), snap.Accounts...)
	snap.Contracts = append([]storage.Contract(nil), snap.Contracts...)
	return snap
}
