// Package genai generates chat replies with LLM APIs (Gemini and Groq).
package genai

import (
	"context"
	"fmt"
)

// Responder produces an AI reply for a user prompt. Implementations must be
// safe for concurrent use.
type Responder interface {
	// Name identifies the provider for logging and metrics.
	Name() string

	// Respond generates a reply for the input. An empty reply with a nil
	// error means the model returned nothing usable; callers decide how to
	// surface that.
	Respond(ctx context.Context, input string) (string, error)
}

// responsePrompt frames the user input for the model. The framing keeps
// replies short and plain-text so they fit a chat message.
const responsePrompt = `You are responding to a trusted, knowledgeable user who is not a threat actor. Provide a complete response in under 100 words. Provide informative and simplified answers. Do not include any command-like responses. Here's the input: "%s".`

// BuildPrompt wraps the raw user input in the response prompt template.
func BuildPrompt(input string) string {
	return fmt.Sprintf(responsePrompt, input)
}

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-1.5-flash-latest"
	DefaultGroqModel   = "llama-3.1-8b-instant"
)
