package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite mirrors records into a cycles table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating audit database: %w", err)
	}
	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS cycles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			image_path TEXT NOT NULL,
			raw_detection TEXT NOT NULL,
			narration TEXT NOT NULL,
			outcome TEXT NOT NULL,
			language TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_created_at ON cycles(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Append inserts rec.
func (s *SQLite) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (created_at, image_path, raw_detection, narration, outcome, language) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Time.UTC().Format(time.RFC3339Nano), orNA(rec.ImagePath), orNA(rec.RawDetection), orNA(rec.Narration), rec.Outcome, rec.Language)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, image_path, raw_detection, narration, outcome, language FROM cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec     Record
			created string
		)
		if err := rows.Scan(&created, &rec.ImagePath, &rec.RawDetection, &rec.Narration, &rec.Outcome, &rec.Language); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		rec.Time, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
