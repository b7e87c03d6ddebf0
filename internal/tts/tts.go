// Package tts defines the interface for text-to-speech synthesis.
//
// Curious Frame voices every narration through a Piper server, reached
// either over its HTTP front end or the Wyoming TCP protocol. Synthesized
// clips are WAV files that the speech cache stores as-is.
package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-audio/wav"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g., "en", "fr") used to pick a voice.
	Language string

	// Voice overrides language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "http", "wyoming").
	Name() string

	// Synthesize generates a WAV clip for text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// SampleRate is the audio sample rate in Hz (e.g., 22050).
	SampleRate int

	// Channels is the number of audio channels (typically 1).
	Channels int
}

// Inspect checks that audio is a playable WAV file and fills in its format.
func Inspect(audio []byte) (*SynthesizeResult, error) {
	dec := wav.NewDecoder(bytes.NewReader(audio))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav data (%d bytes)", len(audio))
	}
	return &SynthesizeResult{
		Audio:      audio,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}

// VoiceFor returns the explicit voice in opts or the configured voice for
// its language.
func VoiceFor(opts SynthesizeOpts, voices map[string]string) string {
	if opts.Voice != "" {
		return opts.Voice
	}
	return voices[opts.Language]
}
