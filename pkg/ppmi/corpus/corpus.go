package corpus

// Sentence is an ordered run of tokens. Adjacency inside a sentence defines
// co-occurrence; windows never cross sentence boundaries.
type Sentence struct {
	Tokens []string
}

// Document is an ordered sequence of sentences
type Document struct {
	ID        string
	Sentences []Sentence
}

// NewDocument builds a document from pre-split sentences
func NewDocument(id string, sentences ...[]string) Document {
	doc := Document{ID: id, Sentences: make([]Sentence, len(sentences))}
	for i, s := range sentences {
		doc.Sentences[i] = Sentence{Tokens: s}
	}
	return doc
}

// DistinctTokens returns each token of the document once, in first-seen order
func (d Document) DistinctTokens() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range d.Sentences {
		for _, t := range s.Tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// NumTokens returns the total number of token occurrences in the document
func (d Document) NumTokens() int {
	n := 0
	for _, s := range d.Sentences {
		n += len(s.Tokens)
	}
	return n
}

// Prune returns a copy of docs in which every sentence keeps only the tokens
// accepted by keep, in their original order. The input corpus is not modified.
// Sentences that end up empty or with a single token are kept.
func Prune(docs []Document, keep func(token string) bool) []Document {
	out := make([]Document, len(docs))
	for i, doc := range docs {
		pruned := Document{ID: doc.ID, Sentences: make([]Sentence, len(doc.Sentences))}
		for j, s := range doc.Sentences {
			filtered := make([]string, 0, len(s.Tokens))
			for _, t := range s.Tokens {
				if keep(t) {
					filtered = append(filtered, t)
				}
			}
			pruned.Sentences[j] = Sentence{Tokens: filtered}
		}
		out[i] = pruned
	}
	return out
}

// Shard splits docs into at most n contiguous, non-empty chunks
func Shard(docs []Document, n int) [][]Document {
	if n < 1 {
		n = 1
	}
	if n > len(docs) {
		n = len(docs)
	}
	if n == 0 {
		return nil
	}

	shards := make([][]Document, 0, n)
	size := (len(docs) + n - 1) / n
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		shards = append(shards, docs[start:end])
	}
	return shards
}
