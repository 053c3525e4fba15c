package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
)

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id          TEXT PRIMARY KEY,
		file_name   TEXT NOT NULL,
		file_path   TEXT NOT NULL DEFAULT '',
		size_bytes  INTEGER NOT NULL DEFAULT 0,
		pages       INTEGER NOT NULL DEFAULT 0,
		state       TEXT NOT NULL,
		pass_count  INTEGER NOT NULL DEFAULT 0,
		fail_count  INTEGER NOT NULL DEFAULT 0,
		warn_count  INTEGER NOT NULL DEFAULT 0,
		score       INTEGER NOT NULL DEFAULT 0,
		scored      INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT '',
		report      TEXT NOT NULL DEFAULT '',
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checks_finished ON checks(finished_at DESC);
	CREATE INDEX IF NOT EXISTS idx_checks_state ON checks(state);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record inserts a finished check.
func (s *SQLiteStore) Record(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report string
	if e.Report != nil {
		data, err := json.Marshal(e.Report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		report = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checks (id, file_name, file_path, size_bytes, pages, state, pass_count, fail_count, warn_count, score, scored, error, report, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FileName, e.FilePath, e.SizeBytes, e.Pages, e.State,
		e.Pass, e.Fail, e.Warning, e.Score, boolToInt(e.Scored), e.Error, report,
		e.StartedAt.UTC().Format(timeLayout),
		e.FinishedAt.UTC().Format(timeLayout),
	)
	return err
}

const selectColumns = `SELECT id, file_name, file_path, size_bytes, pages, state, pass_count, fail_count, warn_count, score, scored, error, report, started_at, finished_at FROM checks`

// Get retrieves an entry by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// List returns entries newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + " WHERE 1=1"
	var args []interface{}

	if filter.State != "" {
		query += " AND state = ?"
		args = append(args, filter.State)
	}
	query += " ORDER BY finished_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Delete removes an entry.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM checks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Prune deletes all but the newest keep entries and reports how many were
// removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative: %d", keep)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checks WHERE id NOT IN (
			SELECT id FROM checks ORDER BY finished_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var scored int
	var report, startedAt, finishedAt string
	err := row.Scan(&e.ID, &e.FileName, &e.FilePath, &e.SizeBytes, &e.Pages, &e.State,
		&e.Pass, &e.Fail, &e.Warning, &e.Score, &scored, &e.Error, &report,
		&startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	e.Scored = scored != 0
	e.StartedAt, _ = time.Parse(timeLayout, startedAt)
	e.FinishedAt, _ = time.Parse(timeLayout, finishedAt)
	if report != "" {
		var r compliance.Report
		if err := json.Unmarshal([]byte(report), &r); err != nil {
			return nil, fmt.Errorf("decode stored report %s: %w", e.ID, err)
		}
		e.Report = &r
	}
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
