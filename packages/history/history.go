// Package history keeps a SQLite log of dispatched requests.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/httpui/packages/dispatch"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// MaxBodyBytes caps the stored response body.
const MaxBodyBytes = 1 << 20

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("history entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id            TEXT PRIMARY KEY,
	file          TEXT NOT NULL DEFAULT '',
	method        TEXT NOT NULL,
	url           TEXT NOT NULL,
	status_code   INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT '',
	response_body TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS exchanges_created_at ON exchanges (created_at);
`

// Entry is one recorded exchange.
type Entry struct {
	ID           string    `json:"id"`
	File         string    `json:"file,omitempty"`
	Method       string    `json:"method"`
	URL          string    `json:"url"`
	StatusCode   int       `json:"statusCode,omitempty"`
	Status       string    `json:"status,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	Error        string    `json:"error,omitempty"`
	ResponseBody string    `json:"responseBody,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is a history database.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens or creates the history database at path. The path may carry
// a "sqlite://" or "sqlite:" prefix.
func Open(path string) (*Store, error) {
	dsn := parseConnectionString(path)
	if dsn == "" {
		return nil, fmt.Errorf("empty history database path")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

func parseConnectionString(connStr string) string {
	connStr = strings.TrimSpace(connStr)
	if strings.HasPrefix(connStr, "sqlite://") {
		return strings.TrimPrefix(connStr, "sqlite://")
	}
	return strings.TrimPrefix(connStr, "sqlite:")
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add stores e and returns its id. Empty ids and timestamps are filled in.
func (s *Store) Add(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.ResponseBody = truncateBody(e.ResponseBody, MaxBodyBytes)

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, file, method, url, status_code, status, duration_ms, error, response_body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.File, e.Method, e.URL, e.StatusCode, e.Status, e.DurationMs, e.Error, e.ResponseBody, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert failed: %w", err)
	}
	return e.ID, nil
}

// truncateBody cuts body to at most max bytes without splitting a rune.
func truncateBody(body string, max int) string {
	if len(body) <= max {
		return body
	}
	n := max
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n]
}

// Record implements dispatch.Recorder.
func (s *Store) Record(ctx context.Context, file string, o *dispatch.Outcome) error {
	e := Entry{
		File:       file,
		Method:     o.Request.Method,
		URL:        o.Request.URL,
		DurationMs: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	if o.Response != nil {
		e.StatusCode = o.Response.StatusCode
		e.Status = o.Response.Status
		e.ResponseBody = o.Response.BodyString()
	}

	_, err := s.Add(ctx, e)
	return err
}

// List returns the most recent entries first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := `SELECT id, file, method, url, status_code, status, duration_ms, error, response_body, created_at
		FROM exchanges ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, file, method, url, status_code, status, duration_ms, error, response_body, created_at
		 FROM exchanges WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges`)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e       Entry
		created int64
	)
	err := row.Scan(&e.ID, &e.File, &e.Method, &e.URL, &e.StatusCode, &e.Status,
		&e.DurationMs, &e.Error, &e.ResponseBody, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	e.CreatedAt = time.Unix(0, created)
	return &e, nil
}
