package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCSV_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "curious_frame.csv")
	sink, err := NewCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	recs := []Record{
		{ImagePath: "captures/a.jpg", RawDetection: "", Narration: "nothing found"},
		{ImagePath: "captures/b.jpg", RawDetection: "ball, cup", Narration: "A ball, \"round\"\nand a cup."},
	}
	for _, r := range recs {
		if err := sink.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Fatalf("record not newline-terminated: %q", raw)
	}
	rows, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0]; got[0] != "captures/a.jpg" || got[1] != "N/A" || got[2] != "nothing found" {
		t.Fatalf("row 0: %v", got)
	}
	if rows[1][2] != recs[1].Narration {
		t.Fatalf("row 1 narration: %q", rows[1][2])
	}
}

func TestCSV_AppendKeepsPriorRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	if err := os.WriteFile(path, []byte("old.jpg,cat,A cat.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sink, _ := NewCSV(path)
	if err := sink.Append(context.Background(), Record{ImagePath: "new.jpg", RawDetection: "dog", Narration: "A dog."}); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "old.jpg,cat,A cat.\nnew.jpg,dog,A dog.\n" {
		t.Fatalf("unexpected log %q", raw)
	}
}

type failingSink struct{ closed bool }

func (f *failingSink) Append(context.Context, Record) error { return errors.New("disk full") }
func (f *failingSink) Close() error {
	f.closed = true
	return nil
}

func TestMulti(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	csvSink, _ := NewCSV(path)
	bad := &failingSink{}
	m := Multi{bad, csvSink}

	err := m.Append(context.Background(), Record{ImagePath: "x.jpg", Narration: "hi"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("later sinks must still be written: %v", statErr)
	}
	if err := m.Close(); err != nil || !bad.closed {
		t.Fatalf("close: %v", err)
	}
}

func TestSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	for i, n := range []string{"A ball.", "dialogue failed: boom"} {
		rec := Record{Time: base.Add(time.Duration(i) * time.Minute), ImagePath: "img.jpg", RawDetection: "ball", Narration: n, Outcome: "novel", Language: "en"}
		if err := db.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recs, err := db.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 || recs[0].Narration != "dialogue failed: boom" || !recs[1].Time.Equal(base) {
		t.Fatalf("unexpected records %+v", recs)
	}
}
