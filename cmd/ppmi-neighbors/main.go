package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/ppmi/pkg/ppmi"
	"github.com/cognicore/ppmi/pkg/ppmi/codec"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
	"github.com/cognicore/ppmi/pkg/ppmi/store/sqlite"
)

func main() {
	var (
		dbPath       = flag.String("db", "", "SQLite database written by ppmi-fit")
		snapshotPath = flag.String("snapshot", "", "Snapshot file written by ppmi-fit --out")
		id           = flag.String("id", "", "Matrix ID in --db (default: latest)")
		token        = flag.String("token", "", "Token to look up (required)")
		k            = flag.Int("k", store.DefaultNeighbors, "Number of neighbors")
		logLevel     = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}

	if *token == "" {
		log.Fatal("--token required")
	}
	if (*dbPath == "") == (*snapshotPath == "") {
		log.Fatal("exactly one of --db or --snapshot is required")
	}

	ctx := context.Background()
	var (
		neighbors []store.Neighbor
		err       error
	)
	if *snapshotPath != "" {
		neighbors, err = snapshotNeighbors(*snapshotPath, *token, *k, log)
	} else {
		neighbors, err = dbNeighbors(ctx, *dbPath, *id, *token, *k, log)
	}
	if err != nil {
		log.WithError(err).Fatal("lookup failed")
	}

	if err := printNeighbors(os.Stdout, neighbors); err != nil {
		log.WithError(err).Fatal("write output")
	}
}

func dbNeighbors(ctx context.Context, path, id, token string, k int, log logrus.FieldLogger) ([]store.Neighbor, error) {
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	return storeNeighbors(ctx, st, id, token, k, log)
}

// storeNeighbors resolves id (latest when empty) and queries the store
func storeNeighbors(ctx context.Context, st store.Store, id, token string, k int, log logrus.FieldLogger) ([]store.Neighbor, error) {
	if id == "" {
		latest, err := st.LatestID(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest matrix: %w", err)
		}
		id = latest
	}
	log.WithFields(logrus.Fields{"matrix": id, "token": token, "k": k}).Debug("querying store")

	neighbors, err := st.TopNeighbors(ctx, id, token, k)
	if err != nil {
		return nil, fmt.Errorf("neighbors of %q: %w", token, err)
	}
	return neighbors, nil
}

// snapshotNeighbors loads a snapshot file into a model and queries it in memory
func snapshotNeighbors(path, token string, k int, log logrus.FieldLogger) ([]store.Neighbor, error) {
	snap, err := codec.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	model, err := ppmi.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	log.WithFields(logrus.Fields{
		"matrix":     model.ID(),
		"vocabulary": model.NumberOfWords(),
		"token":      token,
	}).Debug("snapshot loaded")

	return model.TopNeighbors(token, k), nil
}

// printNeighbors writes one "token<TAB>pmi" line per neighbor
func printNeighbors(w io.Writer, neighbors []store.Neighbor) error {
	for _, n := range neighbors {
		if _, err := fmt.Fprintf(w, "%s\t%.6f\n", n.Token, n.PMI); err != nil {
			return err
		}
	}
	return nil
}
