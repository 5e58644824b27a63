package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// groqResponder generates replies through Groq's OpenAI-compatible API.
type groqResponder struct {
	client openai.Client
	model  string
}

// NewGroq creates a Groq-backed responder.
// Returns nil if apiKey is empty (provider disabled).
func NewGroq(_ context.Context, apiKey, model string) (Responder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGroqModel
	}

	client := openai.NewClient(
		option.WithBaseURL(groqBaseURL),
		option.WithAPIKey(apiKey),
	)

	return &groqResponder{
		client: client,
		model:  model,
	}, nil
}

func (r *groqResponder) Name() string { return "groq" }

// Respond generates a reply for the input.
func (r *groqResponder) Respond(ctx context.Context, input string) (string, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(input)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(256),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
