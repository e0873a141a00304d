package codec

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
	"github.com/cognicore/ppmi/pkg/ppmi/store/storetest"
)

func testSnapshot() store.Snapshot {
	return store.Snapshot{
		ID:         "01HZX3J4K5M6N7P8Q9R0S1T2V3",
		CreatedAt:  time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC),
		MinDF:      2,
		Window:     3,
		Smoothing:  0.75,
		Vocabulary: []string{"a", "b", "c"},
		Entries: []store.Entry{
			{Row: 0, Col: 1, Value: 0.81},
			{Row: 1, Col: 0, Value: 0.81},
			{Row: 2, Col: 1, Value: 1.5},
		},
	}
}

func assertSnapshotEqual(t *testing.T, got, want store.Snapshot) {
	t.Helper()
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testSnapshot()); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertSnapshotEqual(t, got, testSnapshot())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.ppmi")

	if err := WriteFile(path, testSnapshot()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	assertSnapshotEqual(t, got, testSnapshot())
}

func TestDecodeWrongMagic(t *testing.T) {
	data, err := msgpack.Marshal(envelope{Magic: "nope", Version: version})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestDecodeWrongVersion(t *testing.T) {
	data, err := msgpack.Marshal(envelope{Magic: magic, Version: version + 1, Snapshot: testSnapshot()})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte{0xc1, 0x00})); err == nil {
		t.Error("Should error on garbage input")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile("/nonexistent/matrix.ppmi"); err == nil {
		t.Error("Should error on nonexistent file")
	}
}

func TestDecodeRejectsInvalidSnapshot(t *testing.T) {
	for name, snap := range storetest.Invalid() {
		var buf bytes.Buffer
		if err := Encode(&buf, snap); err != nil {
			t.Fatalf("%s: Encode: %v", name, err)
		}
		if _, err := Decode(&buf); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}
