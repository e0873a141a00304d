package pmi

import "github.com/cognicore/ppmi/pkg/ppmi/corpus"

// TokenCounts maps a token to its total number of occurrences
type TokenCounts map[string]int64

// Table holds windowed co-occurrence counts, row-major: Table[a][b] is the
// number of times b was seen within the window of a.
type Table map[string]map[string]int64

// Row returns the co-occurrence row of token, nil if it never co-occurred
func (t Table) Row(token string) map[string]int64 {
	return t[token]
}

func (t Table) inc(a, b string, n int64) {
	row := t[a]
	if row == nil {
		row = make(map[string]int64)
		t[a] = row
	}
	row[b] += n
}

// Counter maintains unigram and co-occurrence counts for PMI calculation
type Counter struct {
	Unigrams TokenCounts
	Pairs    Table
}

// NewCounter creates a new co-occurrence counter
func NewCounter() *Counter {
	return &Counter{
		Unigrams: make(TokenCounts),
		Pairs:    make(Table),
	}
}

// AddDocument updates unigram and window counts for every sentence of doc
func (c *Counter) AddDocument(doc corpus.Document, window int) {
	for _, s := range doc.Sentences {
		c.AddUnigrams(s.Tokens)
		c.AddWindow(s.Tokens, window)
	}
}

// AddUnigrams counts every occurrence of every token
func (c *Counter) AddUnigrams(tokens []string) {
	for _, t := range tokens {
		c.Unigrams[t]++
	}
}

// AddWindow counts, for each position, every token at most window positions
// away. Positions are excluded, not values: a token repeated at two nearby
// positions co-occurs with itself.
func (c *Counter) AddWindow(tokens []string, window int) {
	if len(tokens) <= 1 {
		return
	}
	if window > len(tokens) {
		window = len(tokens)
	}

	for idx, token := range tokens {
		lo := idx - window
		if lo < 0 {
			lo = 0
		}
		hi := idx + window
		if hi > len(tokens)-1 {
			hi = len(tokens) - 1
		}
		for other := lo; other <= hi; other++ {
			if other == idx {
				continue
			}
			c.Pairs.inc(token, tokens[other], 1)
		}
	}
}

// Merge adds all counts from other into c
func (c *Counter) Merge(other *Counter) {
	for t, n := range other.Unigrams {
		c.Unigrams[t] += n
	}
	for a, row := range other.Pairs {
		for b, n := range row {
			c.Pairs.inc(a, b, n)
		}
	}
}

// GetPairCount returns how often b was seen in the window of a
func (c *Counter) GetPairCount(a, b string) int64 {
	return c.Pairs[a][b]
}

// GetTokenCount returns the occurrence count for a token
func (c *Counter) GetTokenCount(t string) int64 {
	return c.Unigrams[t]
}

// TotalTokens returns the sum of all unigram counts
func (c *Counter) TotalTokens() int64 {
	var n int64
	for _, v := range c.Unigrams {
		n += v
	}
	return n
}

// UniqueTokens returns the number of unique tokens
func (c *Counter) UniqueTokens() int {
	return len(c.Unigrams)
}

// UniquePairs returns the number of distinct ordered pairs
func (c *Counter) UniquePairs() int {
	n := 0
	for _, row := range c.Pairs {
		n += len(row)
	}
	return n
}
