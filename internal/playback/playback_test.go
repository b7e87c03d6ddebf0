package playback

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nadzzz/curiousframe/internal/tts"
)

func TestLog_Play(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(clip, tts.EncodeWAV(make([]byte, 22050*2), 22050, 1, 2), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (Log{}).Play(context.Background(), clip); err != nil {
		t.Fatalf("play: %v", err)
	}

	bad := filepath.Join(dir, "bad.wav")
	if err := os.WriteFile(bad, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (Log{}).Play(context.Background(), bad); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := (Log{}).Play(context.Background(), filepath.Join(dir, "missing.wav")); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestSpeaker_RejectsBadClip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewSpeaker().Play(context.Background(), path); err == nil {
		t.Fatalf("expected decode error before opening the device")
	}
}
