// Package piperhttp implements tts.Synthesizer against the Piper HTTP
// server, which accepts a JSON body on POST / and answers with a WAV file.
package piperhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/curiousframe/internal/tts"
)

// Synthesizer posts synthesis requests to one Piper HTTP server.
type Synthesizer struct {
	url    string
	voices map[string]string
	client *http.Client
}

type request struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// New creates an HTTP synthesizer. voices maps ISO-639-1 codes to Piper
// voice names; a missing voice lets the server use its default model.
func New(url string, voices map[string]string, httpClient *http.Client) *Synthesizer {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Synthesizer{url: strings.TrimRight(url, "/") + "/", voices: voices, client: httpClient}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "http" }

// Synthesize returns the WAV clip produced by the server.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	body, err := json.Marshal(request{Text: text, Voice: tts.VoiceFor(opts, s.voices)})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("piper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("piper failed (status %d): %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	res, err := tts.Inspect(audio)
	if err != nil {
		return nil, err
	}
	slog.Debug("piper synthesis complete", "language", opts.Language, "bytes", len(audio), "rate", res.SampleRate)
	return res, nil
}

// Close is a no-op.
func (s *Synthesizer) Close() error { return nil }
