package ppmi

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/ppmi/pkg/ppmi/config"
	"github.com/cognicore/ppmi/pkg/ppmi/corpus"
	"github.com/cognicore/ppmi/pkg/ppmi/pmi"
	"github.com/cognicore/ppmi/pkg/ppmi/sparse"
	"github.com/cognicore/ppmi/pkg/ppmi/vocab"
)

// Params configures a fit
type Params struct {
	MinDF     int     // minimum number of documents a token must appear in; <= 0 keeps every token
	Window    int     // symmetric co-occurrence radius, in tokens
	Smoothing float64 // additive smoothing applied to every count
	Workers   int     // 0 or 1 runs sequentially
	Logger    logrus.FieldLogger
}

// ParamsFromConfig converts a loaded configuration
func ParamsFromConfig(cfg config.Config, log logrus.FieldLogger) Params {
	return Params{
		MinDF:     cfg.MinDF,
		Window:    cfg.Window,
		Smoothing: cfg.Smoothing,
		Workers:   cfg.Workers,
		Logger:    log,
	}
}

// Validate rejects negative windows, negative or non-finite smoothing and
// negative worker counts with internalerr.ErrInvalidConfig.
func (p Params) Validate() error {
	return config.Config{
		MinDF:     p.MinDF,
		Window:    p.Window,
		Smoothing: p.Smoothing,
		Workers:   p.Workers,
	}.Validate()
}

func (p Params) workers() int {
	if p.Workers < 1 {
		return 1
	}
	return p.Workers
}

func (p Params) logger() logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Fit builds a positive PMI matrix from a tokenized corpus.
//
// docs is read but never modified. The returned model's vocabulary is the
// sorted set of tokens present in at least p.MinDF documents; row and column
// i of the matrix both refer to Vocabulary()[i].
func Fit(ctx context.Context, docs []corpus.Document, p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	id := newID(createdAt)
	log := p.logger().WithField("run_id", id)
	workers := p.workers()

	if p.MinDF <= 0 {
		log.WithField("min_df", p.MinDF).Warn("min_df <= 0 disables document-frequency filtering")
	}

	df, err := documentFrequency(ctx, docs, workers)
	if err != nil {
		return nil, err
	}
	v := vocab.New(df.Frequent(p.MinDF))
	tokensIn := 0
	for _, doc := range docs {
		tokensIn += doc.NumTokens()
	}
	log.WithFields(logrus.Fields{
		"stage":      "vocabulary",
		"documents":  len(docs),
		"tokens":     tokensIn,
		"candidates": len(df),
		"vocabulary": v.Len(),
	}).Debug("vocabulary built")

	pruned := corpus.Prune(docs, v.Contains)

	counter, err := countCorpus(ctx, pruned, p.Window, workers)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"stage":   "count",
		"tokens":  counter.TotalTokens(),
		"dropped": int64(tokensIn) - counter.TotalTokens(),
		"pairs":   counter.UniquePairs(),
	}).Debug("counts collected")

	matrix, err := pmi.Assemble(ctx, v, counter, pmi.NewCalculator(p.Smoothing), workers)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"stage": "assemble",
		"nnz":   matrix.NNZ(),
	}).Debug("matrix assembled")

	return &Model{
		id:        id,
		createdAt: createdAt,
		minDF:     p.MinDF,
		window:    p.Window,
		smoothing: p.Smoothing,
		vocab:     v,
		matrix:    matrix,
	}, nil
}

// Model is the immutable result of Fit
type Model struct {
	id        string
	createdAt time.Time
	minDF     int
	window    int
	smoothing float64
	vocab     *vocab.Vocabulary
	matrix    *sparse.Matrix
}

// ID returns the ULID assigned to the fit
func (m *Model) ID() string { return m.id }

// CreatedAt returns when the fit ran
func (m *Model) CreatedAt() time.Time { return m.createdAt }

// MinDF returns the document-frequency threshold used
func (m *Model) MinDF() int { return m.minDF }

// Window returns the co-occurrence radius used
func (m *Model) Window() int { return m.window }

// Smoothing returns the smoothing constant used
func (m *Model) Smoothing() float64 { return m.smoothing }

// Vocabulary returns a copy of the index → token list
func (m *Model) Vocabulary() []string {
	return m.vocab.Tokens()
}

// TokenToIndex returns a copy of the token → index mapping
func (m *Model) TokenToIndex() map[string]int {
	return m.vocab.TokenToIndex()
}

// Index returns the matrix row/column of token
func (m *Model) Index(token string) (int, bool) {
	return m.vocab.Index(token)
}

// PMIMatrix returns the |V| × |V| positive PMI matrix
func (m *Model) PMIMatrix() *sparse.Matrix {
	return m.matrix
}

// NumberOfWords returns the vocabulary size
func (m *Model) NumberOfWords() int {
	return m.vocab.Len()
}
