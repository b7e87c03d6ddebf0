// Package openai implements dialogue.Dialogue using the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nadzzz/curiousframe/internal/config"
	"github.com/nadzzz/curiousframe/internal/dialogue"
)

// Dialogue narrates and translates through OpenAI.
type Dialogue struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	topP        float64
}

// New creates an OpenAI dialogue backend from config. A nil httpClient uses
// the SDK default.
func New(cfg config.DialogueConfig, httpClient *http.Client) *Dialogue {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Dialogue{
		client:      openai.NewClient(opts...),
		model:       cfg.OpenAI.Model,
		maxTokens:   cfg.NumPredict,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}
}

// Name returns the backend identifier.
func (d *Dialogue) Name() string { return "openai" }

// Narrate describes the objects for a child.
func (d *Dialogue) Narrate(ctx context.Context, objects string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(dialogue.SystemPrompt),
			openai.UserMessage(dialogue.NarrationRequest(objects)),
		},
		Temperature: openai.Float(d.temperature),
		TopP:        openai.Float(d.topP),
	}
	if d.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(d.maxTokens))
	}

	reply, err := d.complete(ctx, params)
	if err != nil {
		return "", fmt.Errorf("narrating %q: %w", objects, err)
	}
	slog.Debug("openai narration complete", "objects", objects, "length", len(reply))
	return reply, nil
}

// Translate renders text in targetLanguage.
func (d *Dialogue) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	system, user := dialogue.TranslationMessages(text, targetLanguage)
	reply, err := d.complete(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return "", fmt.Errorf("translating to %s: %w", targetLanguage, err)
	}
	return reply, nil
}

func (d *Dialogue) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := d.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	content := dialogue.CleanReply(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}
	return content, nil
}
