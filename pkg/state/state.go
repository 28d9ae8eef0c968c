package state

import (
	"sync"

	"workstream/pkg/models"
)

// Persister is the opaque blob-store collaborator: whole-snapshot get/set
// only, no partial updates.
type Persister interface {
	Load() (*models.Snapshot, bool, error)
	Save(*models.Snapshot) error
}

// Store owns the single mutable snapshot. One mutex serializes every
// read-validate-mutate-persist sequence; scheduled fires go through the same
// lock, so the last successful Save always reflects a serial history.
type Store struct {
	mu   sync.Mutex
	snap *models.Snapshot
	p    Persister
}

// Open loads the persisted snapshot, or seeds an empty one when the store
// has never been written.
func Open(p Persister) (*Store, error) {
	snap, found, err := p.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		snap = models.NewSnapshot()
	}
	return &Store{snap: snap, p: p}, nil
}

// View runs fn with read access to the snapshot. fn must copy out anything
// it wants to keep; the pointer is invalid after View returns.
func (s *Store) View(fn func(*models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.snap)
}

// Update runs fn with write access and persists the snapshot when fn
// succeeds. Callers must validate before mutating: a returned error skips
// the save but does not roll back in-memory changes.
func (s *Store) Update(fn func(*models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.snap); err != nil {
		return err
	}
	return s.p.Save(s.snap)
}

// Reset replaces the snapshot wholesale and persists it.
func (s *Store) Reset(snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return s.p.Save(s.snap)
}
