package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
	"github.com/cognicore/labelphrase/pkg/labelphrase/store"
)

// timeLayout is fixed-width so created_at sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, internalerr.ErrStoreUnavailable)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

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
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	strategy TEXT NOT NULL,
	n INTEGER NOT NULL,
	top_k INTEGER NOT NULL,
	top_n INTEGER NOT NULL,
	max_words INTEGER NOT NULL,
	global_n INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_labels (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	filter TEXT NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_phrases (
	run_id TEXT NOT NULL,
	label_position INTEGER NOT NULL,
	rank INTEGER NOT NULL,
	phrase TEXT NOT NULL,
	count INTEGER NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(run_id, label_position, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run with all its labels and phrases
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Foreign keys are per connection, so children are cleared explicitly.
	for _, stmt := range []string{
		`DELETE FROM run_phrases WHERE run_id=?`,
		`DELETE FROM run_labels WHERE run_id=?`,
		`DELETE FROM runs WHERE id=?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, r.ID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, strategy, n, top_k, top_n, max_words, global_n)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
		r.ID,
		r.CreatedAt.UTC().Format(timeLayout),
		r.Strategy,
		r.Params.N,
		r.Params.TopK,
		r.Params.TopN,
		r.Params.MaxWords,
		r.Params.GlobalN,
	)
	if err != nil {
		return err
	}

	if err := insertLabels(ctx, tx, r.ID, r.Labels); err != nil {
		return err
	}

	return tx.Commit()
}

func insertLabels(ctx context.Context, tx *sql.Tx, runID string, labels []store.LabelResult) error {
	if len(labels) == 0 {
		return nil
	}
	labelStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_labels (run_id, position, label, filter) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer labelStmt.Close()

	phraseStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_phrases (run_id, label_position, rank, phrase, count, score)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer phraseStmt.Close()

	for pos, l := range labels {
		if _, err := labelStmt.ExecContext(ctx, runID, pos, l.Label, l.Filter); err != nil {
			return err
		}
		for rank, p := range l.Phrases {
			if _, err := phraseStmt.ExecContext(ctx, runID, pos, rank, p.Text, p.Count, p.Score); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, created_at, strategy, n, top_k, top_n, max_words, global_n
FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}
	if err := s.loadLabels(ctx, &r); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns runs newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, strategy, n, top_k, top_n, max_words, global_n
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		if err := s.loadLabels(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r       store.Run
		created string
	)
	err := sc.Scan(&r.ID, &created, &r.Strategy,
		&r.Params.N, &r.Params.TopK, &r.Params.TopN, &r.Params.MaxWords, &r.Params.GlobalN)
	if err != nil {
		return store.Run{}, err
	}
	r.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return r, nil
}

func (s *sqliteStore) loadLabels(ctx context.Context, r *store.Run) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT position, label, filter FROM run_labels
WHERE run_id=? ORDER BY position`, r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos int
			l   store.LabelResult
		)
		if err := rows.Scan(&pos, &l.Label, &l.Filter); err != nil {
			return err
		}
		r.Labels = append(r.Labels, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	phrases, err := s.db.QueryContext(ctx, `
SELECT label_position, phrase, count, score FROM run_phrases
WHERE run_id=? ORDER BY label_position, rank`, r.ID)
	if err != nil {
		return err
	}
	defer phrases.Close()

	for phrases.Next() {
		var (
			pos int
			p   store.Phrase
		)
		if err := phrases.Scan(&pos, &p.Text, &p.Count, &p.Score); err != nil {
			return err
		}
		if pos < 0 || pos >= len(r.Labels) {
			continue
		}
		r.Labels[pos].Phrases = append(r.Labels[pos].Phrases, p)
	}
	return phrases.Err()
}
