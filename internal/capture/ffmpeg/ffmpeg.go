// Package ffmpeg implements capture.Source by asking ffmpeg for one JPEG
// per call from a V4L2 camera device.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/nadzzz/curiousframe/internal/capture"
	"github.com/nadzzz/curiousframe/internal/config"
)

// Source grabs single frames from a camera device through ffmpeg.
type Source struct {
	binary string
	device string
	width  int
	height int
	fps    int
	now    func() time.Time
}

// New creates an ffmpeg source from config.
func New(cfg config.CameraConfig) *Source {
	bin := cfg.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Source{
		binary: bin,
		device: cfg.Device,
		width:  cfg.Width,
		height: cfg.Height,
		fps:    cfg.FPS,
		now:    time.Now,
	}
}

// Name returns the backend identifier.
func (s *Source) Name() string { return "ffmpeg" }

// Next runs ffmpeg once and returns the captured JPEG.
// A device that cannot be read ends the stream.
func (s *Source) Next(ctx context.Context) (capture.Frame, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, s.args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("ffmpeg capture", "device", s.device, "size", fmt.Sprintf("%dx%d", s.width, s.height))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return capture.Frame{}, ctx.Err()
		}
		return capture.Frame{}, fmt.Errorf("%w: ffmpeg on %s: %v: %s", capture.ErrEndOfStream, s.device, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return capture.Frame{}, fmt.Errorf("%w: ffmpeg returned no image from %s", capture.ErrEndOfStream, s.device)
	}

	return capture.Frame{
		Data:       stdout.Bytes(),
		Ext:        "jpg",
		CapturedAt: s.now(),
	}, nil
}

// Close is a no-op; each capture runs its own ffmpeg process.
func (s *Source) Close() error { return nil }

func (s *Source) args() []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-f", "v4l2"}
	if s.width > 0 && s.height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", s.width, s.height))
	}
	if s.fps > 0 {
		args = append(args, "-framerate", strconv.Itoa(s.fps))
	}
	return append(args,
		"-i", s.device,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	)
}
