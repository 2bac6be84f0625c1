package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"

	"go.uber.org/zap"
)

// ImagePipelineConfig names the two storage buckets and bounds the
// generator call and presigned-URL lifetime.
type ImagePipelineConfig struct {
	ReferenceBucket string        // reference portraits, keyed {userId}.png
	EventBucket     string        // generated event images
	PresignTTL      time.Duration // lifetime of returned image URLs
	GenerateTimeout time.Duration // per-image generation bound
}

// ImagePipeline produces one styled image per accepted event: builds the
// prompt, invokes the image generator (seeded with the user's reference
// portrait when one exists), uploads the result, and presigns a retrieval
// URL. It never returns an error; every failure degrades to an empty
// name/URL pair for that event.
type ImagePipeline struct {
	objects   ports.ObjectStore
	generator ports.ImageGenerator
	cfg       ImagePipelineConfig
	logger    *zap.Logger
}

// NewImagePipeline creates an ImagePipeline. Zero config fields get the
// production defaults (7-day URLs, 120s generation bound).
func NewImagePipeline(objects ports.ObjectStore, generator ports.ImageGenerator, cfg ImagePipelineConfig, logger *zap.Logger) *ImagePipeline {
	if cfg.ReferenceBucket == "" {
		cfg.ReferenceBucket = "user-images"
	}
	if cfg.EventBucket == "" {
		cfg.EventBucket = "node-images"
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 7 * 24 * time.Hour
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 120 * time.Second
	}
	return &ImagePipeline{objects: objects, generator: generator, cfg: cfg, logger: logger}
}

// EventBucket returns the bucket generated event images live in.
func (p *ImagePipeline) EventBucket() string {
	return p.cfg.EventBucket
}

// ReferenceBucket returns the bucket reference portraits live in.
func (p *ImagePipeline) ReferenceBucket() string {
	return p.cfg.ReferenceBucket
}

// RemoveEventImage deletes one generated event image. Used by cascade
// deletion for best-effort cleanup.
func (p *ImagePipeline) RemoveEventImage(ctx context.Context, imageName string) error {
	return p.objects.RemoveObject(ctx, p.cfg.EventBucket, imageName)
}

// GenerateEventImage runs the full pipeline for one event candidate and
// returns the stored filename and its presigned URL, or empty strings on
// any failure.
func (p *ImagePipeline) GenerateEventImage(ctx context.Context, userID string, event lifepath.EventCandidate, cumulativeMonths int, profile *lifepath.UserProfile) (string, string) {
	for _, bucket := range []string{p.cfg.ReferenceBucket, p.cfg.EventBucket} {
		if err := p.objects.EnsureBucket(ctx, bucket); err != nil {
			p.logger.Warn("Could not ensure bucket",
				zap.String("bucket", bucket),
				zap.Error(err),
			)
		}
	}

	// The reference portrait is optional; generation proceeds without it.
	reference, err := p.objects.GetObject(ctx, p.cfg.ReferenceBucket, ReferenceImageKey(userID))
	if err != nil {
		p.logger.Debug("No reference portrait for user",
			zap.String("userID", userID),
			zap.Error(err),
		)
		reference = nil
	}

	prompt := buildImagePrompt(event, cumulativeMonths, profile)

	genCtx, cancel := context.WithTimeout(ctx, p.cfg.GenerateTimeout)
	defer cancel()

	image, err := p.generator.Generate(genCtx, prompt, reference)
	if err != nil {
		p.logger.Warn("Image generation failed",
			zap.String("event", event.Name),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return "", ""
	}
	if image == nil || len(image.Data) == 0 {
		p.logger.Warn("Image generator returned no image",
			zap.String("event", event.Name),
			zap.String("userID", userID),
		)
		return "", ""
	}

	filename := EventImageFilename(event.Name, userID, image.MIMEType)

	if err := p.objects.PutObject(ctx, p.cfg.EventBucket, filename, image.Data, image.MIMEType); err != nil {
		p.logger.Error("Failed to upload event image",
			zap.String("bucket", p.cfg.EventBucket),
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", ""
	}

	url, err := p.objects.PresignGet(ctx, p.cfg.EventBucket, filename, p.cfg.PresignTTL)
	if err != nil {
		p.logger.Warn("Failed to presign event image URL",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return filename, ""
	}

	return filename, url
}

// ReferenceImageKey is the storage key of a user's reference portrait.
func ReferenceImageKey(userID string) string {
	return userID + ".png"
}

// EventImageFilename derives the stable filename for an event image:
// {sanitized-event-name}-{userId}{ext}, lowercased, with spaces and
// slashes replaced by hyphens and the extension taken from the MIME type.
func EventImageFilename(eventName, userID, mimeType string) string {
	safe := strings.ToLower(eventName)
	safe = strings.ReplaceAll(safe, " ", "-")
	safe = strings.ReplaceAll(safe, "/", "-")
	return safe + "-" + userID + extensionForMIME(mimeType)
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// buildImagePrompt combines the event, the aging descriptor for the elapsed
// time, and the profile context into one image-generation prompt.
func buildImagePrompt(event lifepath.EventCandidate, cumulativeMonths int, profile *lifepath.UserProfile) string {
	userName := "the person"
	if profile != nil && profile.Name != "" {
		userName = profile.Name
	}
	years := float64(cumulativeMonths) / 12

	var b strings.Builder
	fmt.Fprintf(&b, "Create a realistic, professional SQUARE image representing this life event for %s: %s\n\n", userName, event.Name)
	fmt.Fprintf(&b, "Event Context: %s\n\n", event.Description)
	fmt.Fprintf(&b, "AGING CONTEXT (%.1f years have passed):\n%s\n", years, lifepath.AgingContext(cumulativeMonths))

	if profile != nil {
		b.WriteString("\nUSER CONTEXT FOR IMAGE GENERATION:\n")
		fields := []struct {
			label string
			value string
		}{
			{"Name", profile.Name},
			{"Gender", profile.Gender},
			{"Current Role", profile.Title},
			{"Location", profile.Location},
			{"Background", profile.Background},
			{"Skills", profile.Skills},
			{"Interests", profile.Interests},
			{"Core Values", profile.Values},
			{"Goals", profile.Aspirations},
		}
		for _, f := range fields {
			if f.value != "" {
				fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
			}
		}
	}

	b.WriteString("\nStyle Requirements:\n")
	b.WriteString("- Photorealistic style with natural lighting\n")
	b.WriteString("- Square aspect ratio (1:1)\n")
	b.WriteString("- Show appropriate facial expressions and body language for this life event\n")
	fmt.Fprintf(&b, "- Include relevant environmental elements based on %s's background and the event context\n", userName)
	fmt.Fprintf(&b, "\nThe image should authentically represent %s's life milestone and be suitable for a professional life journey visualization.\n", userName)

	return b.String()
}
