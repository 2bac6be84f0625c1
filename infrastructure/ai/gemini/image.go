package gemini

import (
	"context"
	"fmt"

	"lifepath-backend/application/ports"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ImageGenerator implements ports.ImageGenerator on a Gemini model with
// image output. When a reference portrait is supplied it is sent as inline
// data ahead of the prompt so the generated scene keeps the subject's
// likeness.
type ImageGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewImageGenerator creates an ImageGenerator for the given model.
func NewImageGenerator(client *genai.Client, model string, logger *zap.Logger) *ImageGenerator {
	return &ImageGenerator{client: client, model: model, logger: logger}
}

// Generate streams a generation and returns the first inline image chunk.
// A stream that completes without any image part yields (nil, nil).
func (g *ImageGenerator) Generate(ctx context.Context, prompt string, reference []byte) (*ports.GeneratedImage, error) {
	parts := make([]*genai.Part, 0, 2)
	if len(reference) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     reference,
				MIMEType: "image/png",
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	for chunk, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, config) {
		if err != nil {
			return nil, fmt.Errorf("gemini image generation failed: %w", err)
		}
		for _, cand := range chunk.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					mime := part.InlineData.MIMEType
					if mime == "" {
						mime = "image/png"
					}
					g.logger.Debug("Image generation complete",
						zap.String("model", g.model),
						zap.String("mimeType", mime),
						zap.Int("bytes", len(part.InlineData.Data)),
					)
					return &ports.GeneratedImage{
						Data:     part.InlineData.Data,
						MIMEType: mime,
					}, nil
				}
			}
		}
	}

	g.logger.Warn("Image stream produced no inline image", zap.String("model", g.model))
	return nil, nil
}

var _ ports.ImageGenerator = (*ImageGenerator)(nil)
