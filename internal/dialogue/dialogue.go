// Package dialogue defines the interface for turning detected objects into a
// short spoken narration and for translating sentences between the device
// languages.
//
// Curious Frame ships with two backends: Ollama (self-hosted) and OpenAI.
package dialogue

import (
	"context"
	"fmt"
	"strings"
)

// SystemPrompt frames every narration request.
const SystemPrompt = `You are a helpful assistant that describes objects displayed by a child.
The child is curious and asks questions about the objects.
You should provide a short, simple description suitable for a child between 2 and 8 years old.`

const translatePrompt = `You translate short sentences spoken to a young child.
Reply with the translation only, without quotes, notes or explanations.`

// Dialogue is the interface for narration and translation.
type Dialogue interface {
	// Name returns the backend identifier (e.g., "ollama", "openai").
	Name() string

	// Narrate describes the comma-separated objects for a child.
	Narrate(ctx context.Context, objects string) (string, error)

	// Translate renders text in the target language (a language name such
	// as "French").
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// NarrationRequest returns the user message asking about objects.
func NarrationRequest(objects string) string {
	return fmt.Sprintf("Tell what those objects are and what they are used to: %s.", objects)
}

// TranslationMessages returns the system and user messages of a translation
// request.
func TranslationMessages(text, targetLanguage string) (system, user string) {
	return translatePrompt, fmt.Sprintf("Translate into %s:\n%s", targetLanguage, text)
}

// CleanReply trims whitespace and wrapping quotes from a model reply.
func CleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if len(reply) >= 2 && strings.HasPrefix(reply, `"`) && strings.HasSuffix(reply, `"`) {
		reply = strings.TrimSpace(reply[1 : len(reply)-1])
	}
	return reply
}
