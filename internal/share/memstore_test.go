package share

import (
	"context"
	"errors"
	"sync"
)

type memStore struct {
	mu        sync.Mutex
	rows      map[string]Snapshot
	taken     map[string]bool // ids that lose the insert race
	gets      int
	failGet   error
	failCheck error
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]Snapshot{}, taken: map[string]bool{}}
}

func (m *memStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCheck != nil {
		return false, m.failCheck
	}
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memStore) InsertIfAbsent(_ context.Context, snap Snapshot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken[snap.ID] {
		return false, nil
	}
	if _, ok := m.rows[snap.ID]; ok {
		return false, nil
	}
	m.rows[snap.ID] = snap
	return true, nil
}

func (m *memStore) Get(_ context.Context, id string) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet != nil {
		return Snapshot{}, false, m.failGet
	}
	snap, ok := m.rows[id]
	return snap, ok, nil
}

var errBoom = errors.New("boom")

func sequence(ids ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}
