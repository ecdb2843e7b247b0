package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/bucketbook/internal/ingest"
)

// Entry is one journaled merge.
type Entry struct {
	Seq          int64     `json:"seq"`
	SubmissionID string    `json:"submission_id"`
	Key          string    `json:"key"`
	File         string    `json:"file"`
	Rows         int       `json:"rows"`
	At           time.Time `json:"at"`
}

var _ ingest.Journal = (*Store)(nil)

// Record appends a merge to the journal.
func (s *Store) Record(ctx context.Context, rec ingest.MergeRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merges (submission_id, bucket_key, file, rows_appended, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.SubmissionID,
		rec.Key,
		rec.File,
		rec.Rows,
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record merge: %w", err)
	}
	return nil
}

// ForKey returns every merge into bucket key, oldest first.
func (s *Store) ForKey(ctx context.Context, key string) ([]Entry, error) {
	return s.query(ctx, `
		SELECT seq, submission_id, bucket_key, file, rows_appended, created_at
		FROM merges
		WHERE bucket_key = ?
		ORDER BY seq ASC
	`, key)
}

// Submission returns the merges of one submission in the order applied.
func (s *Store) Submission(ctx context.Context, id string) ([]Entry, error) {
	return s.query(ctx, `
		SELECT seq, submission_id, bucket_key, file, rows_appended, created_at
		FROM merges
		WHERE submission_id = ?
		ORDER BY seq ASC
	`, id)
}

// Recent returns up to limit of the latest merges, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	return s.query(ctx, `
		SELECT seq, submission_id, bucket_key, file, rows_appended, created_at
		FROM (SELECT * FROM merges ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC
	`, limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query merges: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merges: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e  Entry
		at string
	)
	if err := rows.Scan(&e.Seq, &e.SubmissionID, &e.Key, &e.File, &e.Rows, &at); err != nil {
		return Entry{}, fmt.Errorf("scan merge: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", at, err)
	}
	e.At = t
	return e, nil
}
