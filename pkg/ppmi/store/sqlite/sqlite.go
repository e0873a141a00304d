package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
)

// fixed width so that text order matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS matrices (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	min_df INTEGER NOT NULL,
	window_size INTEGER NOT NULL,
	smoothing REAL NOT NULL,
	vocab_size INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS vocab (
	matrix_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(matrix_id, idx),
	UNIQUE(matrix_id, token),
	FOREIGN KEY(matrix_id) REFERENCES matrices(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS entries (
	matrix_id TEXT NOT NULL,
	row_idx INTEGER NOT NULL,
	col_idx INTEGER NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY(matrix_id, row_idx, col_idx),
	FOREIGN KEY(matrix_id) REFERENCES matrices(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_matrices_created ON matrices(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutSnapshot inserts a snapshot, replacing any snapshot with the same ID
func (s *sqliteStore) PutSnapshot(ctx context.Context, snap store.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM entries WHERE matrix_id=?`,
		`DELETE FROM vocab WHERE matrix_id=?`,
		`DELETE FROM matrices WHERE id=?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, snap.ID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO matrices (id, created_at, min_df, window_size, smoothing, vocab_size)
VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID,
		snap.CreatedAt.UTC().Format(timeLayout),
		snap.MinDF,
		snap.Window,
		snap.Smoothing,
		len(snap.Vocabulary),
	)
	if err != nil {
		return err
	}

	if err := insertVocab(ctx, tx, snap.ID, snap.Vocabulary); err != nil {
		return err
	}
	if err := insertEntries(ctx, tx, snap.ID, snap.Entries); err != nil {
		return err
	}

	return tx.Commit()
}

func insertVocab(ctx context.Context, tx *sql.Tx, id string, tokens []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vocab (matrix_id, idx, token) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tokens {
		if _, err := stmt.ExecContext(ctx, id, i, t); err != nil {
			return fmt.Errorf("insert token %q: %w", t, err)
		}
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, id string, entries []store.Entry) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (matrix_id, row_idx, col_idx, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, id, e.Row, e.Col, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// GetSnapshot loads a full snapshot
func (s *sqliteStore) GetSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	var (
		snap      store.Snapshot
		createdAt string
		vocabSize int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, min_df, window_size, smoothing, vocab_size
FROM matrices WHERE id=?`, id).Scan(
		&snap.ID, &createdAt, &snap.MinDF, &snap.Window, &snap.Smoothing, &vocabSize,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Snapshot{}, err
	}

	snap.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	snap.Vocabulary, err = s.loadVocab(ctx, id, vocabSize)
	if err != nil {
		return store.Snapshot{}, err
	}
	snap.Entries, err = s.loadEntries(ctx, id)
	if err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

func (s *sqliteStore) loadVocab(ctx context.Context, id string, size int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM vocab WHERE matrix_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]string, 0, size)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *sqliteStore) loadEntries(ctx context.Context, id string) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT row_idx, col_idx, value FROM entries WHERE matrix_id=? ORDER BY row_idx, col_idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.Row, &e.Col, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestID returns the most recently created snapshot
func (s *sqliteStore) LatestID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM matrices ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", internalerr.ErrNotFound
	}
	return id, err
}

// GetPMI returns the stored PPMI of (t1, t2); ok is false when the pair has no entry
func (s *sqliteStore) GetPMI(ctx context.Context, id, t1, t2 string) (float64, bool, error) {
	if err := s.requireMatrix(ctx, id); err != nil {
		return 0, false, err
	}

	var v float64
	err := s.db.QueryRowContext(ctx, `
SELECT e.value
FROM entries e
JOIN vocab a ON a.matrix_id = e.matrix_id AND a.idx = e.row_idx
JOIN vocab b ON b.matrix_id = e.matrix_id AND b.idx = e.col_idx
WHERE e.matrix_id = ? AND a.token = ? AND b.token = ?`, id, t1, t2).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// TopNeighbors returns the k highest PPMI entries in the row of token
func (s *sqliteStore) TopNeighbors(ctx context.Context, id, token string, k int) ([]store.Neighbor, error) {
	if k <= 0 {
		k = store.DefaultNeighbors
	}
	if err := s.requireMatrix(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT n.token, e.value
FROM entries e
JOIN vocab r ON r.matrix_id = e.matrix_id AND r.idx = e.row_idx
JOIN vocab n ON n.matrix_id = e.matrix_id AND n.idx = e.col_idx
WHERE e.matrix_id = ? AND r.token = ?
ORDER BY e.value DESC, n.token ASC
LIMIT ?`, id, token, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var neighbors []store.Neighbor
	for rows.Next() {
		var n store.Neighbor
		if err := rows.Scan(&n.Token, &n.PMI); err != nil {
			return nil, err
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, rows.Err()
}

func (s *sqliteStore) requireMatrix(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM matrices WHERE id=?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return internalerr.ErrNotFound
	}
	return err
}
