package store

import (
	"context"
	"sort"
	"time"
)

// Store is the interface for persisting and querying fitted PMI matrices
type Store interface {
	Close() error

	PutSnapshot(ctx context.Context, s Snapshot) error
	GetSnapshot(ctx context.Context, id string) (Snapshot, error)
	LatestID(ctx context.Context) (string, error)

	GetPMI(ctx context.Context, id, t1, t2 string) (float64, bool, error)
	TopNeighbors(ctx context.Context, id, token string, k int) ([]Neighbor, error)
}

// Snapshot is the storable form of a fitted matrix
type Snapshot struct {
	ID         string    `msgpack:"id"`
	CreatedAt  time.Time `msgpack:"created_at"`
	MinDF      int       `msgpack:"min_df"`
	Window     int       `msgpack:"window"`
	Smoothing  float64   `msgpack:"smoothing"`
	Vocabulary []string  `msgpack:"vocabulary"`
	Entries    []Entry   `msgpack:"entries"`
}

// Entry is one stored matrix cell, indices refer to Vocabulary
type Entry struct {
	Row   int     `msgpack:"r"`
	Col   int     `msgpack:"c"`
	Value float64 `msgpack:"v"`
}

// Neighbor represents a token's PMI neighbor
type Neighbor struct {
	Token string
	PMI   float64
}

// DefaultNeighbors is used when a non-positive k is requested
const DefaultNeighbors = 10

// SortNeighbors orders by descending PMI, ties by token, and keeps the top k
func SortNeighbors(neighbors []Neighbor, k int) []Neighbor {
	if k <= 0 {
		k = DefaultNeighbors
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].PMI != neighbors[j].PMI {
			return neighbors[i].PMI > neighbors[j].PMI
		}
		return neighbors[i].Token < neighbors[j].Token
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
