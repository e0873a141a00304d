package ppmi

import (
	"github.com/cognicore/ppmi/pkg/ppmi/sparse"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
	"github.com/cognicore/ppmi/pkg/ppmi/vocab"
)

// Snapshot converts the model to its storable form
func (m *Model) Snapshot() store.Snapshot {
	snap := store.Snapshot{
		ID:         m.id,
		CreatedAt:  m.createdAt,
		MinDF:      m.minDF,
		Window:     m.window,
		Smoothing:  m.smoothing,
		Vocabulary: m.vocab.Tokens(),
		Entries:    make([]store.Entry, 0, m.matrix.NNZ()),
	}
	m.matrix.DoNonZero(func(i, j int, v float64) {
		snap.Entries = append(snap.Entries, store.Entry{Row: i, Col: j, Value: v})
	})
	return snap
}

// FromSnapshot rebuilds a model from a stored snapshot. Snapshots failing
// store.Snapshot.Validate are rejected with internalerr.ErrInvalidInput.
func FromSnapshot(s store.Snapshot) (*Model, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	v := vocab.New(s.Vocabulary)
	b := sparse.NewBuilder(v.Len(), v.Len())
	for _, e := range s.Entries {
		b.Set(e.Row, e.Col, e.Value)
	}

	return &Model{
		id:        s.ID,
		createdAt: s.CreatedAt,
		minDF:     s.MinDF,
		window:    s.Window,
		smoothing: s.Smoothing,
		vocab:     v,
		matrix:    b.Build(),
	}, nil
}
