// Package storetest holds behaviour every store.Store implementation must share.
package storetest

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
)

// Sample returns a small snapshot for tests
func Sample(id string, createdAt time.Time) store.Snapshot {
	return store.Snapshot{
		ID:         id,
		CreatedAt:  createdAt,
		MinDF:      1,
		Window:     2,
		Smoothing:  1,
		Vocabulary: []string{"cat", "dog", "mat", "the"},
		Entries: []store.Entry{
			{Row: 0, Col: 2, Value: 0.4},
			{Row: 0, Col: 3, Value: 1.2},
			{Row: 0, Col: 1, Value: 0.9},
			{Row: 1, Col: 0, Value: 0.9},
			{Row: 3, Col: 0, Value: 1.2},
		},
	}
}

// Run exercises open against the shared Store contract. open must return a
// fresh, empty store on every call.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, open(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, open(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, open(t)) })
	t.Run("Latest", func(t *testing.T) { testLatest(t, open(t)) })
	t.Run("GetPMI", func(t *testing.T) { testGetPMI(t, open(t)) })
	t.Run("TopNeighbors", func(t *testing.T) { testTopNeighbors(t, open(t)) })
	t.Run("RejectInvalid", func(t *testing.T) { testRejectInvalid(t, open(t)) })
	t.Run("EmptySnapshot", func(t *testing.T) { testEmptySnapshot(t, open(t)) })
}

func testPutGet(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	snap := Sample("run-1", time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC))

	if err := st.PutSnapshot(ctx, snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	got, err := st.GetSnapshot(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, snap.CreatedAt)
	}
	if got.MinDF != snap.MinDF || got.Window != snap.Window || got.Smoothing != snap.Smoothing {
		t.Errorf("Parameters mismatch: %+v", got)
	}
	if !reflect.DeepEqual(got.Vocabulary, snap.Vocabulary) {
		t.Errorf("Vocabulary = %v, want %v", got.Vocabulary, snap.Vocabulary)
	}
	if !sameEntries(got.Entries, snap.Entries) {
		t.Errorf("Entries = %v, want %v", got.Entries, snap.Entries)
	}
}

func testReplace(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	snap := Sample("run-1", time.Now())

	if err := st.PutSnapshot(ctx, snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	snap.Vocabulary = []string{"x", "y"}
	snap.Entries = []store.Entry{{Row: 0, Col: 1, Value: 2}}
	if err := st.PutSnapshot(ctx, snap); err != nil {
		t.Fatalf("PutSnapshot replace: %v", err)
	}

	got, err := st.GetSnapshot(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got.Vocabulary, []string{"x", "y"}) {
		t.Errorf("Vocabulary not replaced: %v", got.Vocabulary)
	}
	if len(got.Entries) != 1 {
		t.Errorf("Entries not replaced: %v", got.Entries)
	}
}

func testNotFound(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	if _, err := st.GetSnapshot(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetSnapshot: expected ErrNotFound, got %v", err)
	}
	if _, err := st.LatestID(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("LatestID: expected ErrNotFound, got %v", err)
	}
	if _, _, err := st.GetPMI(ctx, "missing", "a", "b"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetPMI: expected ErrNotFound, got %v", err)
	}
	if _, err := st.TopNeighbors(ctx, "missing", "a", 3); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("TopNeighbors: expected ErrNotFound, got %v", err)
	}
}

func testLatest(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"b-old", "a-new", "c-mid"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		if err := st.PutSnapshot(ctx, Sample(id, base.Add(offsets[i]))); err != nil {
			t.Fatalf("PutSnapshot %s: %v", id, err)
		}
	}

	id, err := st.LatestID(ctx)
	if err != nil {
		t.Fatalf("LatestID: %v", err)
	}
	if id != "a-new" {
		t.Errorf("LatestID = %q, want a-new", id)
	}
}

func testGetPMI(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	if err := st.PutSnapshot(ctx, Sample("run-1", time.Now())); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	v, ok, err := st.GetPMI(ctx, "run-1", "cat", "the")
	if err != nil || !ok || v != 1.2 {
		t.Errorf("GetPMI(cat,the) = %f, %v, %v", v, ok, err)
	}

	// Rows are directional
	if _, ok, _ := st.GetPMI(ctx, "run-1", "the", "dog"); ok {
		t.Error("GetPMI(the,dog) should be absent")
	}
	if _, ok, err := st.GetPMI(ctx, "run-1", "cat", "unknown"); ok || err != nil {
		t.Errorf("Unknown token should be absent without error, got %v, %v", ok, err)
	}
}

func testTopNeighbors(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	if err := st.PutSnapshot(ctx, Sample("run-1", time.Now())); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	got, err := st.TopNeighbors(ctx, "run-1", "cat", 2)
	if err != nil {
		t.Fatalf("TopNeighbors: %v", err)
	}
	want := []store.Neighbor{{Token: "the", PMI: 1.2}, {Token: "dog", PMI: 0.9}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopNeighbors = %v, want %v", got, want)
	}

	all, err := st.TopNeighbors(ctx, "run-1", "cat", 0)
	if err != nil {
		t.Fatalf("TopNeighbors k=0: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("k <= 0 should use the default limit, got %d neighbors", len(all))
	}

	none, err := st.TopNeighbors(ctx, "run-1", "mat", 5)
	if err != nil || len(none) != 0 {
		t.Errorf("Token without entries: %v, %v", none, err)
	}
}

// Invalid returns snapshots every Store must refuse with ErrInvalidInput
func Invalid() map[string]store.Snapshot {
	withEntries := func(entries ...store.Entry) store.Snapshot {
		s := Sample("bad", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		s.Entries = entries
		return s
	}
	withVocabulary := func(tokens ...string) store.Snapshot {
		s := Sample("bad", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		s.Vocabulary = tokens
		s.Entries = nil
		return s
	}

	return map[string]store.Snapshot{
		"missing id":          {},
		"out of range":        withEntries(store.Entry{Row: 9, Col: 0, Value: 1}),
		"negative value":      withEntries(store.Entry{Row: 0, Col: 1, Value: -2}),
		"zero value":          withEntries(store.Entry{Row: 0, Col: 1, Value: 0}),
		"infinite value":      withEntries(store.Entry{Row: 0, Col: 1, Value: math.Inf(1)}),
		"duplicate cell":      withEntries(store.Entry{Row: 1, Col: 0, Value: 0.5}, store.Entry{Row: 1, Col: 0, Value: 0.7}),
		"duplicate token":     withVocabulary("a", "a"),
		"unsorted vocabulary": withVocabulary("b", "a"),
	}
}

func testRejectInvalid(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	for name, snap := range Invalid() {
		if err := st.PutSnapshot(ctx, snap); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	// Nothing was stored
	if _, err := st.LatestID(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Rejected snapshots must not be stored, LatestID returned %v", err)
	}
}

func testEmptySnapshot(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	if err := st.PutSnapshot(ctx, store.Snapshot{ID: "empty", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	got, err := st.GetSnapshot(ctx, "empty")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(got.Vocabulary) != 0 || len(got.Entries) != 0 {
		t.Errorf("Expected empty snapshot, got %+v", got)
	}
}

func sameEntries(a, b []store.Entry) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[store.Entry]int, len(a))
	for _, e := range a {
		set[e]++
	}
	for _, e := range b {
		set[e]--
		if set[e] < 0 {
			return false
		}
	}
	return true
}
