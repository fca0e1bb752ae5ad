// Package disk implements the ability to read and write snapshots to a JSON
// file on disk.
package disk

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/mining/foundation/mining/storage"
)

// Disk represents the storage implementation for persisting snapshots to a
// single file. This implements the storage.Storage interface.
type Disk struct {
	mu   sync.Mutex
	path string
}

// New constructs a Disk value for use, creating the directory for the file
// if needed.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	return &Disk{path: path}, nil
}

// Close in this implementation has nothing to do since the file is written
// and closed for every snapshot.
func (d *Disk) Close() error {
	return nil
}

// Write stores the snapshot on disk. The snapshot is written to a temporary
// file first and renamed, so a crash never leaves a partial snapshot.
func (d *Disk) Write(snap storage.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Marshal the snapshot for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, d.path)
}

// Read returns the last snapshot written to disk.
func (d *Disk) Read() (storage.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.Open(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, err
	}
	defer f.Close()

	var snap storage.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return storage.Snapshot{}, err
	}

	return snap, nil
}

// Reset removes the snapshot from disk.
func (d *Disk) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
