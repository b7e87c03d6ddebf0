// Package perception defines the interface for extracting the objects shown
// inside the cardboard frame from a camera image.
//
// Curious Frame ships with two backends: Ollama (local multimodal model)
// and OpenAI (cloud vision model).
package perception

import (
	"context"
	"strings"

	"github.com/nadzzz/curiousframe/internal/capture"
)

// NoTargetMarker is what the model answers when it sees nothing in the frame.
const NoTargetMarker = "no target found"

// DefaultPrompt asks the model for a comma-separated object list.
const DefaultPrompt = `Look at the cardboard frame in this picture and list the objects placed inside it.
Answer only with a comma-separated list of short object names, most prominent first.
Write "unknown" for an object you cannot identify.
If a printed flag is visible, name it with its country (for example "french flag").
If the frame is empty or cannot be seen, answer exactly: ` + NoTargetMarker

// Detector maps a frame to a comma-separated object list.
type Detector interface {
	// Name returns the backend identifier (e.g., "ollama", "openai").
	Name() string

	// Detect returns the raw object list, or "" when nothing is in the frame.
	Detect(ctx context.Context, frame capture.Frame) (string, error)
}

// CleanReply turns a model answer into a detection string: the absence
// marker becomes "", surrounding whitespace, quotes and a trailing period
// are removed.
func CleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.Contains(strings.ToLower(reply), NoTargetMarker) {
		return ""
	}
	reply = strings.Trim(reply, "\"'`")
	reply = strings.TrimSuffix(reply, ".")
	return strings.TrimSpace(reply)
}

// MIMEType returns the content type for a frame extension.
func MIMEType(ext string) string {
	if strings.EqualFold(ext, "png") {
		return "image/png"
	}
	return "image/jpeg"
}
