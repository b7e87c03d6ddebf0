// Package ollama implements dialogue.Dialogue with a chat model served by
// Ollama.
package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nadzzz/curiousframe/internal/config"
	"github.com/nadzzz/curiousframe/internal/dialogue"
	"github.com/nadzzz/curiousframe/internal/ollama"
)

// Dialogue narrates and translates through /api/chat.
type Dialogue struct {
	client  *ollama.Client
	model   string
	options ollama.Options
}

// New creates an Ollama dialogue backend from config.
func New(cfg config.DialogueConfig, httpClient *http.Client) *Dialogue {
	return &Dialogue{
		client: ollama.New(cfg.Ollama.URL, httpClient),
		model:  cfg.Ollama.Model,
		options: ollama.Options{
			NumPredict:  cfg.NumPredict,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		},
	}
}

// Name returns the backend identifier.
func (d *Dialogue) Name() string { return "ollama" }

// Narrate describes the objects for a child.
func (d *Dialogue) Narrate(ctx context.Context, objects string) (string, error) {
	reply, err := d.chat(ctx, dialogue.SystemPrompt, dialogue.NarrationRequest(objects), &d.options)
	if err != nil {
		return "", fmt.Errorf("narrating %q: %w", objects, err)
	}
	slog.Debug("ollama narration complete", "objects", objects, "length", len(reply))
	return reply, nil
}

// Translate renders text in targetLanguage.
func (d *Dialogue) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	system, user := dialogue.TranslationMessages(text, targetLanguage)
	// Translations should stay literal.
	reply, err := d.chat(ctx, system, user, &ollama.Options{Temperature: 0.1})
	if err != nil {
		return "", fmt.Errorf("translating to %s: %w", targetLanguage, err)
	}
	return reply, nil
}

func (d *Dialogue) chat(ctx context.Context, system, user string, opts *ollama.Options) (string, error) {
	reply, err := d.client.Chat(ctx, ollama.ChatRequest{
		Model: d.model,
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		KeepAlive: -1,
		Options:   opts,
	})
	if err != nil {
		return "", err
	}
	return dialogue.CleanReply(reply), nil
}
