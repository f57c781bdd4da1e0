package directory

import (
	"context"
	"sync"
	"sync/atomic"
)

// Store holds the live Directory.
//
// Readers call Current and never block. Reloads are serialized with each
// other and publish a new snapshot with a single atomic store, so a reader
// sees either the old Directory or the new one, never a mix.
type Store struct {
	current    atomic.Pointer[Directory]
	generation atomic.Uint64

	// reloadMu serializes Reload calls. It is never taken by readers.
	reloadMu sync.Mutex
}

// NewStore creates a Store serving d. A nil d is replaced by an empty directory.
func NewStore(d *Directory) *Store {
	if d == nil {
		d = Empty()
	}
	s := &Store{}
	s.current.Store(d)
	s.generation.Store(1)
	return s
}

// Current returns the live snapshot. The returned Directory stays valid and
// unchanged for as long as the caller holds it.
func (s *Store) Current() *Directory {
	return s.current.Load()
}

// Replace installs d as the live snapshot.
func (s *Store) Replace(d *Directory) {
	if d == nil {
		return
	}
	s.current.Store(d)
	s.generation.Add(1)
}

// Reload decodes src and, only on success, replaces the live snapshot.
// On failure the previous snapshot stays current and the error is returned.
func (s *Store) Reload(ctx context.Context, src Source) (*Directory, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	d, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}

	s.Replace(d)
	return d, nil
}

// Generation counts successful installs, starting at 1 for the initial directory.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}
