// Package audit persists one record per session cycle.
//
// The CSV log is the durable record: three columns (image path, raw
// detection, narration or error), opened, appended, synced and closed on
// every write. A SQLite mirror with extra columns can be attached for
// querying.
package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// NotAvailable fills fields that have no value for a cycle.
const NotAvailable = "N/A"

// Record is one closed cycle.
type Record struct {
	Time         time.Time
	ImagePath    string
	RawDetection string
	Narration    string // narration text, or the formatted error on failure paths
	Outcome      string
	Language     string
}

// Sink appends records.
type Sink interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// CSV appends records to a CSV file.
type CSV struct {
	path string
}

// NewCSV returns a sink writing to path, creating its directory.
func NewCSV(path string) (*CSV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit directory: %w", err)
		}
	}
	return &CSV{path: path}, nil
}

// Path returns the log file path.
func (c *CSV) Path() string { return c.path }

// Append writes rec as one CSV row.
func (c *CSV) Append(_ context.Context, rec Record) (err error) {
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing audit log: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{orNA(rec.ImagePath), orNA(rec.RawDetection), orNA(rec.Narration)}); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing audit record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing audit log: %w", err)
	}
	return nil
}

// Close is a no-op; the file is closed after every write.
func (c *CSV) Close() error { return nil }

// Multi fans a record out to several sinks. Every sink is tried.
type Multi []Sink

// Append writes rec to each sink and joins their errors.
func (m Multi) Append(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes each sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
