// Package dir implements capture.Source over a directory of image files,
// replayed in file-name order. It is used for demos and bench runs without
// a camera attached.
package dir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nadzzz/curiousframe/internal/capture"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Source replays image files from a directory.
type Source struct {
	files []string
	next  int
	now   func() time.Time
}

// New lists the images in path. The listing is taken once; files added
// later are not picked up.
func New(path string) (*Source, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing frames: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)

	return &Source{files: files, now: time.Now}, nil
}

// Name returns the backend identifier.
func (s *Source) Name() string { return "dir" }

// Next returns the next image, or capture.ErrEndOfStream after the last one.
func (s *Source) Next(ctx context.Context) (capture.Frame, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, err
	}
	if s.next >= len(s.files) {
		return capture.Frame{}, capture.ErrEndOfStream
	}

	path := s.files[s.next]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return capture.Frame{}, fmt.Errorf("reading frame %s: %w", path, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "jpeg" {
		ext = "jpg"
	}
	return capture.Frame{Data: data, Ext: ext, CapturedAt: s.now()}, nil
}

// Close is a no-op.
func (s *Source) Close() error { return nil }
