// Package store keeps a sqlite archive of every job the monitor has ever
// announced. The seen file only holds ids; the archive retains the full
// record so a listing that disappears from the site is not lost entirely.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"jobwatch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source_id TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  url TEXT NOT NULL,
  extra TEXT NOT NULL DEFAULT '{}',
  found_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_source_id ON jobs(source_id);
CREATE INDEX IF NOT EXISTS idx_jobs_found_at ON jobs(found_at);
`

type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite wants a single writer
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Insert records a newly seen job. Returns false when the source id was
// already archived.
func (a *Archive) Insert(ctx context.Context, rec domain.JobRecord, foundAt time.Time) (bool, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return false, fmt.Errorf("archive insert: missing source id")
	}
	if foundAt.IsZero() {
		foundAt = time.Now().UTC()
	}

	extraB, _ := json.Marshal(rec.Extra)

	res, err := a.db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs(source_id, title, company, url, extra, found_at)
VALUES(?,?,?,?,?,?);`,
		rec.ID,
		rec.Title,
		rec.Company,
		rec.URL,
		string(extraB),
		foundAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	return n, err
}
