package corpus

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
)

func TestDistinctTokens(t *testing.T) {
	doc := NewDocument("d1", []string{"a", "b", "a"}, []string{"c", "b"})

	got := doc.DistinctTokens()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctTokens = %v, want %v", got, want)
	}

	if doc.NumTokens() != 5 {
		t.Errorf("Expected 5 tokens, got %d", doc.NumTokens())
	}
}

func TestDistinctTokensEmpty(t *testing.T) {
	doc := NewDocument("empty")
	if len(doc.DistinctTokens()) != 0 {
		t.Error("Empty document should have no tokens")
	}
}

func TestPrunePreservesOrder(t *testing.T) {
	docs := []Document{
		NewDocument("d1", []string{"x", "a", "y", "b", "a"}),
		NewDocument("d2", []string{"y"}, []string{}),
	}
	keep := func(tok string) bool { return tok == "a" || tok == "b" }

	pruned := Prune(docs, keep)

	if len(pruned) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(pruned))
	}
	if got := pruned[0].Sentences[0].Tokens; !reflect.DeepEqual(got, []string{"a", "b", "a"}) {
		t.Errorf("Pruned sentence = %v", got)
	}
	if len(pruned[1].Sentences) != 2 {
		t.Fatalf("Sentences must be kept even when emptied, got %d", len(pruned[1].Sentences))
	}
	for _, s := range pruned[1].Sentences {
		if len(s.Tokens) != 0 {
			t.Errorf("Expected empty sentence, got %v", s.Tokens)
		}
	}
	if pruned[0].ID != "d1" {
		t.Errorf("ID should be carried over, got %q", pruned[0].ID)
	}
}

func TestPruneDoesNotMutateInput(t *testing.T) {
	docs := []Document{NewDocument("d1", []string{"x", "a", "y"})}
	Prune(docs, func(tok string) bool { return tok == "a" })

	if got := docs[0].Sentences[0].Tokens; !reflect.DeepEqual(got, []string{"x", "a", "y"}) {
		t.Errorf("Input corpus was modified: %v", got)
	}
}

func TestShard(t *testing.T) {
	docs := make([]Document, 7)

	tests := []struct {
		n         int
		wantCount int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{7, 7},
		{20, 7},
	}

	for _, tc := range tests {
		shards := Shard(docs, tc.n)
		if len(shards) != tc.wantCount {
			t.Errorf("Shard(7 docs, %d): got %d shards, want %d", tc.n, len(shards), tc.wantCount)
		}
		total := 0
		for _, s := range shards {
			if len(s) == 0 {
				t.Errorf("Shard(7 docs, %d) produced an empty shard", tc.n)
			}
			total += len(s)
		}
		if total != len(docs) {
			t.Errorf("Shard(7 docs, %d) covers %d docs", tc.n, total)
		}
	}

	if Shard(nil, 4) != nil {
		t.Error("Sharding an empty corpus should return nil")
	}
}

func TestReadJSONL(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"d1","sentences":[["a","b"],["c"]]}`,
		``,
		`not json`,
		`{"sentences":[["d"]]}`,
	}, "\n")

	docs, err := ReadJSONL(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "d1" || len(docs[0].Sentences) != 2 {
		t.Errorf("Unexpected first document: %+v", docs[0])
	}
	if docs[1].ID != "line-4" {
		t.Errorf("Missing id should default to line number, got %q", docs[1].ID)
	}
}

func TestReadJSONLNoDocuments(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("garbage\n\n"), nil)
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestWriteThenLoadJSONL(t *testing.T) {
	docs := []Document{
		NewDocument("d1", []string{"a", "b", "c"}),
		NewDocument("d2", []string{"a", "b"}, []string{"d"}),
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, docs); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadJSONL(path, nil)
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if !reflect.DeepEqual(loaded, docs) {
		t.Errorf("Loaded corpus differs:\n got %+v\nwant %+v", loaded, docs)
	}
}

func TestLoadJSONLMissingFile(t *testing.T) {
	if _, err := LoadJSONL("/nonexistent/corpus.jsonl", nil); err == nil {
		t.Error("Should error on nonexistent file")
	}
}
