// Package openai implements perception.Detector with an OpenAI vision model.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nadzzz/curiousframe/internal/capture"
	"github.com/nadzzz/curiousframe/internal/config"
	"github.com/nadzzz/curiousframe/internal/perception"
)

// Detector sends frames to the Chat Completions API as image parts.
type Detector struct {
	client openai.Client
	model  string
	prompt string
}

// New creates a detector from config. A nil httpClient uses the SDK default.
func New(cfg config.PerceptionConfig, httpClient *http.Client) *Detector {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = perception.DefaultPrompt
	}
	return &Detector{
		client: openai.NewClient(opts...),
		model:  cfg.OpenAI.Model,
		prompt: prompt,
	}
}

// Name returns the backend identifier.
func (d *Detector) Name() string { return "openai" }

// Detect asks the model which objects are inside the frame.
func (d *Detector) Detect(ctx context.Context, frame capture.Frame) (string, error) {
	if len(frame.Data) == 0 {
		return "", fmt.Errorf("empty frame")
	}

	dataURL := "data:" + perception.MIMEType(frame.Ext) + ";base64," + base64.StdEncoding.EncodeToString(frame.Data)
	resp, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(d.prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return "", fmt.Errorf("detecting objects: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat API")
	}

	reply := resp.Choices[0].Message.Content
	detected := perception.CleanReply(reply)
	slog.Debug("openai detection complete", "raw", reply, "detected", detected)
	return detected, nil
}
