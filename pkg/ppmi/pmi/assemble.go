package pmi

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/ppmi/pkg/ppmi/sparse"
	"github.com/cognicore/ppmi/pkg/ppmi/vocab"
)

type cell struct {
	col int
	val float64
}

// Assemble turns counts into a |V| × |V| positive PMI matrix. Row i holds the
// PMI of v.Token(i) with each token seen in its window; only strictly
// positive scores are stored.
//
// counter must have been filled from a corpus pruned to v. A co-occurring
// token outside the vocabulary breaks that contract and causes a panic.
//
// Rows are independent, so with workers > 1 they are scored concurrently.
// The result does not depend on workers.
func Assemble(ctx context.Context, v *vocab.Vocabulary, counter *Counter, calc *Calculator, workers int) (*sparse.Matrix, error) {
	n := v.Len()
	logTotal := math.Log(calc.Total(counter.TotalTokens(), n))
	rows := make([][]cell, n)

	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rows[i] = assembleRow(v, counter, calc, logTotal, i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		chunk := (n + workers - 1) / workers
		for start := 0; start < n; start += chunk {
			lo, hi := start, start+chunk
			if hi > n {
				hi = n
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					rows[i] = assembleRow(v, counter, calc, logTotal, i)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	b := sparse.NewBuilder(n, n)
	for i, row := range rows {
		for _, c := range row {
			b.Set(i, c.col, c.val)
		}
	}
	return b.Build(), nil
}

func assembleRow(v *vocab.Vocabulary, counter *Counter, calc *Calculator, logTotal float64, i int) []cell {
	token := v.Token(i)
	nA := counter.GetTokenCount(token)

	pairs := counter.Pairs.Row(token)
	out := make([]cell, 0, len(pairs))
	for other, nAB := range pairs {
		j, ok := v.Index(other)
		if !ok {
			panic(fmt.Sprintf("pmi: co-occurring token %q of %q is not in the vocabulary", other, token))
		}
		score := calc.PMI(nAB, nA, counter.GetTokenCount(other), logTotal)
		if score > 0 {
			out = append(out, cell{col: j, val: score})
		}
	}
	return out
}
