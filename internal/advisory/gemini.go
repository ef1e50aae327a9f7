package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash-preview-04-17"
	DefaultImageModel = "imagen-3.0-generate-002"

	jsonMIMEType  = "application/json"
	imageMIMEType = "image/jpeg"
)

// Config holds the Gemini client settings
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

// GeminiGenerator implements Generator on top of the Gemini API
type GeminiGenerator struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
}

// NewGeminiGenerator creates a Gemini client. It returns ErrAPIKeyMissing
// when no key is configured so callers can run without AI features.
func NewGeminiGenerator(ctx context.Context, config *Config) (*GeminiGenerator, error) {
	if config == nil || strings.TrimSpace(config.APIKey) == "" {
		return nil, ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &GeminiGenerator{
		client:     client,
		textModel:  config.TextModel,
		imageModel: config.ImageModel,
		timeout:    config.Timeout,
	}
	if g.textModel == "" {
		g.textModel = DefaultTextModel
	}
	if g.imageModel == "" {
		g.imageModel = DefaultImageModel
	}
	return g, nil
}

func (g *GeminiGenerator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// GenerateText sends a single-turn prompt to the text model. With jsonMode
// the model is asked for an application/json answer.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var config *genai.GenerateContentConfig
	if jsonMode {
		config = &genai.GenerateContentConfig{ResponseMIMEType: jsonMIMEType}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// GenerateImage asks the image model for one JPEG and returns its raw bytes
func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: imageMIMEType,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, nil
	}
	first := resp.GeneratedImages[0]
	if first == nil || first.Image == nil {
		return nil, nil
	}
	return first.Image.ImageBytes, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// errorDetail extracts the most useful message from an SDK error
func errorDetail(err error) string {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil || err.Error() == "" {
		return "An unknown error occurred."
	}
	return err.Error()
}
