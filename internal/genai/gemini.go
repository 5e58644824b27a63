package genai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiResponder generates replies with the Gemini API.
type geminiResponder struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed responder.
// Returns nil if apiKey is empty (provider disabled).
func NewGemini(ctx context.Context, apiKey, model string) (Responder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiResponder{
		client: client,
		model:  model,
	}, nil
}

func (r *geminiResponder) Name() string { return "gemini" }

// Respond generates a reply for the input.
func (r *geminiResponder) Respond(ctx context.Context, input string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 256, // replies are capped at ~100 words by the prompt
	}

	result, err := r.client.Models.GenerateContent(
		ctx,
		r.model,
		genai.Text(BuildPrompt(input)),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	return extractText(result), nil
}

// extractText pulls the concatenated text parts from the first candidate.
func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
