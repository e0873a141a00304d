package ppmi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/ppmi/pkg/ppmi/corpus"
	"github.com/cognicore/ppmi/pkg/ppmi/pmi"
	"github.com/cognicore/ppmi/pkg/ppmi/vocab"
)

// documentFrequency counts each shard into its own table and merges by addition
func documentFrequency(ctx context.Context, docs []corpus.Document, workers int) (vocab.DocFreq, error) {
	shards := corpus.Shard(docs, workers)
	parts := make([]vocab.DocFreq, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			df := make(vocab.DocFreq)
			for _, doc := range shard {
				if err := gctx.Err(); err != nil {
					return err
				}
				df.AddDocument(doc)
			}
			parts[i] = df
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	merged := make(vocab.DocFreq)
	for _, part := range parts {
		merged.Merge(part)
	}
	return merged, nil
}

// countCorpus runs the unigram and window counters over shards of a pruned corpus
func countCorpus(ctx context.Context, docs []corpus.Document, window, workers int) (*pmi.Counter, error) {
	shards := corpus.Shard(docs, workers)
	parts := make([]*pmi.Counter, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			c := pmi.NewCounter()
			for _, doc := range shard {
				if err := gctx.Err(); err != nil {
					return err
				}
				c.AddDocument(doc, window)
			}
			parts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	merged := pmi.NewCounter()
	for _, part := range parts {
		merged.Merge(part)
	}
	return merged, nil
}
