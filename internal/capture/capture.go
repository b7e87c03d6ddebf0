// Package capture defines the frame source the session loop reads from.
//
// Each backend (ffmpeg device, image directory, WebSocket camera) implements
// Source. A source that has no more frames returns ErrEndOfStream, which ends
// the session without being treated as a failure.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrEndOfStream is returned by Next when no further frame will be produced.
var ErrEndOfStream = errors.New("capture: end of stream")

// Frame is a single encoded camera image.
type Frame struct {
	// Data is the encoded image (JPEG unless Ext says otherwise).
	Data []byte

	// Ext is the file extension without the dot (e.g., "jpg", "png").
	Ext string

	// CapturedAt is when the frame was read from the source.
	CapturedAt time.Time
}

// Source yields frames one at a time.
type Source interface {
	// Name returns the backend identifier (e.g., "ffmpeg", "dir").
	Name() string

	// Next blocks until a frame is available or the stream ends.
	Next(ctx context.Context) (Frame, error)

	// Close releases the device or connection.
	Close() error
}

// timestampLayout names frames so that lexical order is capture order.
const timestampLayout = "20060102-150405.000"

// FramePath returns the timestamp-derived path for a frame inside dir.
func FramePath(dir string, f Frame) string {
	ext := f.Ext
	if ext == "" {
		ext = "jpg"
	}
	return filepath.Join(dir, f.CapturedAt.Format(timestampLayout)+"."+ext)
}

// Save writes the frame to path, creating parent directories as needed.
func Save(f Frame, path string) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("saving frame: empty image")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating frame directory: %w", err)
	}
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
