package vocab

import (
	"sort"

	"github.com/cognicore/ppmi/pkg/ppmi/corpus"
)

// DocFreq maps a token to the number of documents containing it
type DocFreq map[string]int64

// DocumentFrequency counts, for every token, how many documents contain it.
// Repetitions inside a document count once.
func DocumentFrequency(docs []corpus.Document) DocFreq {
	df := make(DocFreq)
	for _, doc := range docs {
		df.AddDocument(doc)
	}
	return df
}

// AddDocument counts each distinct token of doc once
func (df DocFreq) AddDocument(doc corpus.Document) {
	for _, t := range doc.DistinctTokens() {
		df[t]++
	}
}

// Merge adds the counts of other into df
func (df DocFreq) Merge(other DocFreq) {
	for t, n := range other {
		df[t] += n
	}
}

// Frequent returns the tokens present in at least minDF documents.
// With minDF <= 0 every observed token qualifies.
func (df DocFreq) Frequent(minDF int) []string {
	out := make([]string, 0, len(df))
	for t, n := range df {
		if n >= int64(minDF) {
			out = append(out, t)
		}
	}
	return out
}

// Vocabulary is an immutable, lexicographically ordered token index
type Vocabulary struct {
	indexToToken []string
	tokenToIndex map[string]int
}

// New builds a vocabulary from an unordered token set. Duplicates are ignored;
// indices follow sort.Strings order so they are reproducible across runs.
func New(tokens []string) *Vocabulary {
	sorted := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	index := make(map[string]int, len(sorted))
	for i, t := range sorted {
		index[t] = i
	}
	return &Vocabulary{indexToToken: sorted, tokenToIndex: index}
}

// Len returns the number of tokens
func (v *Vocabulary) Len() int {
	return len(v.indexToToken)
}

// Token returns the token at index i
func (v *Vocabulary) Token(i int) string {
	return v.indexToToken[i]
}

// Index returns the position of token
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.tokenToIndex[token]
	return i, ok
}

// Contains reports whether token is part of the vocabulary
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.tokenToIndex[token]
	return ok
}

// Tokens returns a copy of the index → token list
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.indexToToken))
	copy(out, v.indexToToken)
	return out
}

// TokenToIndex returns a copy of the token → index mapping
func (v *Vocabulary) TokenToIndex() map[string]int {
	out := make(map[string]int, len(v.tokenToIndex))
	for t, i := range v.tokenToIndex {
		out[t] = i
	}
	return out
}
