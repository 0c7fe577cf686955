package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

// SQLiteDB persists requests and notices. Reference data stays in the
// MemoryStore.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			requester TEXT NOT NULL,
			category TEXT NOT NULL,
			urgency TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
			location TEXT NOT NULL,
			description TEXT NOT NULL,
			submitted_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notices (
			id TEXT PRIMARY KEY,
			target_state TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			severity TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_requests_submitted_at ON requests(submitted_at);
		CREATE INDEX IF NOT EXISTS idx_notices_created_at ON notices(created_at);
		CREATE INDEX IF NOT EXISTS idx_notices_target_state ON notices(target_state);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Seed inserts the given records, leaving any row with the same ID as it is.
func (s *SQLiteDB) Seed(ctx context.Context, requests []models.Request, notices []models.Notice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range requests {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO requests
			(id, requester, category, urgency, status, location, description, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Requester, r.Category, r.Urgency, r.Status, r.Location, r.Description, r.SubmittedAt.UTC()); err != nil {
			return fmt.Errorf("error seeding request %s: %w", r.ID, err)
		}
	}
	for _, n := range notices {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO notices
			(id, target_state, title, message, severity, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.TargetState, n.Title, n.Message, n.Severity, n.Source, n.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("error seeding notice %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDB) AddRequest(ctx context.Context, r *models.Request) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO requests
		(id, requester, category, urgency, status, location, description, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Requester, r.Category, r.Urgency, r.Status, r.Location, r.Description, r.SubmittedAt.UTC())
	if err != nil {
		return fmt.Errorf("error inserting request %s: %w", r.ID, err)
	}
	return nil
}

const requestColumns = `id, requester, category, urgency, status, location, description, submitted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*models.Request, error) {
	var r models.Request
	if err := row.Scan(&r.ID, &r.Requester, &r.Category, &r.Urgency, &r.Status, &r.Location, &r.Description, &r.SubmittedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteDB) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading request %s: %w", id, err)
	}
	return r, nil
}

// ListRequests returns requests in insertion order, matching the memory
// store. Ordering for display is the query package's job.
func (s *SQLiteDB) ListRequests(ctx context.Context) ([]models.Request, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("error listing requests: %w", err)
	}
	defer rows.Close()

	var results []models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning request: %w", err)
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

func (s *SQLiteDB) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Request, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE requests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("error updating request %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return s.GetRequest(ctx, id)
}

func (s *SQLiteDB) AddNotice(ctx context.Context, n *models.Notice) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO notices
		(id, target_state, title, message, severity, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		n.ID, n.TargetState, n.Title, n.Message, n.Severity, n.Source, n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("error inserting notice %s: %w", n.ID, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("notice %s: %w", n.ID, ErrDuplicate)
	}
	return nil
}

func (s *SQLiteDB) NoticeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM notices WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking notice %s: %w", id, err)
	}
	return exists, nil
}

func (s *SQLiteDB) ListNotices(ctx context.Context, opts NoticeFilter) ([]models.Notice, error) {
	query := `SELECT id, target_state, title, message, severity, source, created_at FROM notices`

	var (
		where []string
		args  []any
	)
	if opts.TargetState != "" {
		where = append(where, "target_state = ? COLLATE NOCASE")
		args = append(args, opts.TargetState)
	}
	if opts.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, opts.Since.UTC())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing notices: %w", err)
	}
	defer rows.Close()

	var results []models.Notice
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.ID, &n.TargetState, &n.Title, &n.Message, &n.Severity, &n.Source, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notice: %w", err)
		}
		results = append(results, n)
	}
	return results, rows.Err()
}
