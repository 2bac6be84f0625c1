// Package gemini adapts the Google Gemini API to the generator ports.
// The text and image adapters share one client; model names come from
// configuration.
package gemini

import (
	"context"
	"fmt"

	"lifepath-backend/application/ports"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// TextGenerator implements ports.TextGenerator on Gemini.
type TextGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewTextGenerator creates a TextGenerator for the given model.
func NewTextGenerator(client *genai.Client, model string, logger *zap.Logger) *TextGenerator {
	return &TextGenerator{client: client, model: model, logger: logger}
}

// Generate returns the model's raw text completion for the prompt.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini text generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}

	g.logger.Debug("Text generation complete",
		zap.String("model", g.model),
		zap.Int("promptLen", len(prompt)),
		zap.Int("responseLen", len(text)),
	)
	return text, nil
}

var _ ports.TextGenerator = (*TextGenerator)(nil)
