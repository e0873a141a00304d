package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
)

type pairKey struct {
	row, col int
}

type record struct {
	snap  store.Snapshot
	index map[string]int
	cells map[pairKey]float64
	rows  map[int][]store.Entry
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{records: make(map[string]*record)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// PutSnapshot inserts or replaces a snapshot, keyed by ID.
func (s *Store) PutSnapshot(ctx context.Context, snap store.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	rec := &record{
		snap:  copySnapshot(snap),
		index: make(map[string]int, len(snap.Vocabulary)),
		cells: make(map[pairKey]float64, len(snap.Entries)),
		rows:  make(map[int][]store.Entry),
	}
	for i, t := range snap.Vocabulary {
		rec.index[t] = i
	}
	for _, e := range snap.Entries {
		rec.cells[pairKey{e.Row, e.Col}] = e.Value
		rec.rows[e.Row] = append(rec.rows[e.Row], e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[snap.ID] = rec
	return nil
}

// GetSnapshot returns a copy of the stored snapshot.
func (s *Store) GetSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return store.Snapshot{}, internalerr.ErrNotFound
	}
	return copySnapshot(rec.snap), nil
}

// LatestID returns the most recently created snapshot.
func (s *Store) LatestID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *record
	for _, rec := range s.records {
		if latest == nil || newer(rec.snap, latest.snap) {
			latest = rec
		}
	}
	if latest == nil {
		return "", internalerr.ErrNotFound
	}
	return latest.snap.ID, nil
}

// GetPMI returns the stored PPMI of (t1, t2); ok is false when absent.
func (s *Store) GetPMI(ctx context.Context, id, t1, t2 string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return 0, false, internalerr.ErrNotFound
	}
	i, ok1 := rec.index[t1]
	j, ok2 := rec.index[t2]
	if !ok1 || !ok2 {
		return 0, false, nil
	}
	v, ok := rec.cells[pairKey{i, j}]
	return v, ok, nil
}

// TopNeighbors returns the k highest PPMI entries in the row of token.
func (s *Store) TopNeighbors(ctx context.Context, id, token string, k int) ([]store.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, internalerr.ErrNotFound
	}
	row, ok := rec.index[token]
	if !ok {
		return nil, nil
	}

	var neighbors []store.Neighbor
	for _, e := range rec.rows[row] {
		neighbors = append(neighbors, store.Neighbor{Token: rec.snap.Vocabulary[e.Col], PMI: e.Value})
	}
	return store.SortNeighbors(neighbors, k), nil
}

func newer(a, b store.Snapshot) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func copySnapshot(s store.Snapshot) store.Snapshot {
	out := s
	out.Vocabulary = append([]string(nil), s.Vocabulary...)
	out.Entries = append([]store.Entry(nil), s.Entries...)
	return out
}
