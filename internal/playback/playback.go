// Package playback plays cached WAV clips.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player plays one clip to completion.
type Player interface {
	Play(ctx context.Context, path string) error
}

// Speaker plays clips on the default audio output.
type Speaker struct {
	mu   sync.Mutex
	rate beep.SampleRate // 0 until the speaker is initialized
}

// NewSpeaker returns a player for the default audio output. The device is
// opened lazily on the first clip.
func NewSpeaker() *Speaker { return &Speaker{} }

// Play decodes the WAV clip at path and blocks until it has been played or
// ctx is done.
func (s *Speaker) Play(ctx context.Context, path string) error {
	streamer, format, err := decode(path)
	if err != nil {
		return err
	}
	defer streamer.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rate == 0 {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("initializing speaker: %w", err)
		}
		s.rate = format.SampleRate
	}

	var src beep.Streamer = streamer
	if format.SampleRate != s.rate {
		src = beep.Resample(4, format.SampleRate, s.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(src, beep.Callback(func() { close(done) })))

	select {
	case <-done:
	case <-ctx.Done():
		speaker.Clear()
		return fmt.Errorf("playback interrupted: %w", ctx.Err())
	}
	if err := streamer.Err(); err != nil {
		return fmt.Errorf("streaming %s: %w", path, err)
	}
	return nil
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("opening clip: %w", err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return streamer, format, nil
}

// Log replaces audio output with a log line, for headless runs.
type Log struct{}

// Play checks the clip decodes and logs it.
func (Log) Play(_ context.Context, path string) error {
	streamer, format, err := decode(path)
	if err != nil {
		return err
	}
	defer streamer.Close()
	slog.Info("playing clip", "path", path, "duration", format.SampleRate.D(streamer.Len()).Round(time.Millisecond))
	return nil
}
