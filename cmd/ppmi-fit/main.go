package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/ppmi/pkg/ppmi"
	"github.com/cognicore/ppmi/pkg/ppmi/codec"
	"github.com/cognicore/ppmi/pkg/ppmi/config"
	"github.com/cognicore/ppmi/pkg/ppmi/corpus"
	"github.com/cognicore/ppmi/pkg/ppmi/store/sqlite"
)

// fitOptions holds everything main parsed from the command line
type fitOptions struct {
	inputPath string
	dbPath    string
	outPath   string
	loader    config.Loader
}

func main() {
	var (
		inputPath  = flag.String("input", "", "Tokenized corpus JSONL (required)")
		configPath = flag.String("config", "", "Fit configuration YAML (optional)")
		dbPath     = flag.String("db", "", "SQLite database to store the matrix in")
		outPath    = flag.String("out", "", "Write the matrix snapshot (msgpack) to this file")
		minDF      = flag.Int("min-df", 0, "Override min_df")
		window     = flag.Int("window", 0, "Override window")
		smoothing  = flag.Float64("smoothing", 0, "Override smoothing")
		workers    = flag.Int("workers", 0, "Override workers")
		logLevel   = flag.String("log-level", "", "Override log_level")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *inputPath == "" {
		log.Fatal("--input required")
	}
	if *dbPath == "" && *outPath == "" {
		log.Fatal("at least one of --db or --out is required")
	}

	opts := fitOptions{
		inputPath: *inputPath,
		dbPath:    *dbPath,
		outPath:   *outPath,
		loader:    config.Loader{Path: *configPath},
	}

	// Only flags given explicitly override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-df":
			opts.loader.Overrides.MinDF = minDF
		case "window":
			opts.loader.Overrides.Window = window
		case "smoothing":
			opts.loader.Overrides.Smoothing = smoothing
		case "workers":
			opts.loader.Overrides.Workers = workers
		case "log-level":
			opts.loader.Overrides.LogLevel = logLevel
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model, err := run(ctx, opts, log)
	if err != nil {
		log.WithError(err).Fatal("fit failed")
	}

	log.WithFields(logrus.Fields{
		"run_id":     model.ID(),
		"vocabulary": model.NumberOfWords(),
		"nnz":        model.PMIMatrix().NNZ(),
	}).Info("✓ PMI matrix ready")
}

// run loads configuration and corpus, fits the matrix and writes it to every
// requested destination.
func run(ctx context.Context, opts fitOptions, log *logrus.Logger) (*ppmi.Model, error) {
	cfg, err := opts.loader.Load()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.Level())

	docs, err := corpus.LoadJSONL(opts.inputPath, log)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	log.WithFields(logrus.Fields{
		"documents": len(docs),
		"path":      opts.inputPath,
	}).Info("corpus loaded")

	model, err := ppmi.Fit(ctx, docs, ppmi.ParamsFromConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	snap := model.Snapshot()

	if opts.dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		if err := st.PutSnapshot(ctx, snap); err != nil {
			return nil, fmt.Errorf("store snapshot: %w", err)
		}
		log.WithField("db", opts.dbPath).Info("snapshot stored")
	}

	if opts.outPath != "" {
		if err := codec.WriteFile(opts.outPath, snap); err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}
		log.WithField("out", opts.outPath).Info("snapshot written")
	}

	return model, nil
}
