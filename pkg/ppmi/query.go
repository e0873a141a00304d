package ppmi

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/ppmi/pkg/ppmi/store"
)

// PMI returns the stored positive PMI of (a, b). ok is false when either token
// is outside the vocabulary or the pair has no positive score.
func (m *Model) PMI(a, b string) (float64, bool) {
	i, ok := m.vocab.Index(a)
	if !ok {
		return 0, false
	}
	j, ok := m.vocab.Index(b)
	if !ok {
		return 0, false
	}
	return m.matrix.Get(i, j)
}

// TopNeighbors returns the k tokens with the highest PMI in token's row
func (m *Model) TopNeighbors(token string, k int) []store.Neighbor {
	i, ok := m.vocab.Index(token)
	if !ok {
		return nil
	}

	neighbors := make([]store.Neighbor, 0, m.matrix.RowNNZ(i))
	m.matrix.DoRowNonZero(i, func(_, j int, v float64) {
		neighbors = append(neighbors, store.Neighbor{Token: m.vocab.Token(j), PMI: v})
	})
	return store.SortNeighbors(neighbors, k)
}

// Vector returns token's dense PMI row
func (m *Model) Vector(token string) (*mat.VecDense, bool) {
	i, ok := m.vocab.Index(token)
	if !ok {
		return nil, false
	}
	return m.matrix.RowVector(i), true
}
