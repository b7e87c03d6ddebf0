// Package ollama implements perception.Detector with a local multimodal
// model served by Ollama.
package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nadzzz/curiousframe/internal/capture"
	"github.com/nadzzz/curiousframe/internal/config"
	"github.com/nadzzz/curiousframe/internal/ollama"
	"github.com/nadzzz/curiousframe/internal/perception"
)

// Detector sends frames to an Ollama vision model.
type Detector struct {
	client *ollama.Client
	model  string
	prompt string
}

// New creates a detector from config.
func New(cfg config.PerceptionConfig, httpClient *http.Client) *Detector {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = perception.DefaultPrompt
	}
	return &Detector{
		client: ollama.New(cfg.Ollama.URL, httpClient),
		model:  cfg.Ollama.Model,
		prompt: prompt,
	}
}

// Name returns the backend identifier.
func (d *Detector) Name() string { return "ollama" }

// Detect asks the model which objects are inside the frame.
func (d *Detector) Detect(ctx context.Context, frame capture.Frame) (string, error) {
	if len(frame.Data) == 0 {
		return "", fmt.Errorf("empty frame")
	}

	reply, err := d.client.Chat(ctx, ollama.ChatRequest{
		Model: d.model,
		Messages: []ollama.Message{{
			Role:    "user",
			Content: d.prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(frame.Data)},
		}},
		KeepAlive: -1,
		Options:   &ollama.Options{Temperature: 0.1},
	})
	if err != nil {
		return "", fmt.Errorf("detecting objects: %w", err)
	}

	detected := perception.CleanReply(reply)
	slog.Debug("ollama detection complete", "raw", reply, "detected", detected)
	return detected, nil
}
