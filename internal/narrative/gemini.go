package narrative

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator produces text for a prompt with the named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// GeneratorFactory builds a Generator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// GeminiGenerator calls the Gemini API through the GenAI SDK.
type GeminiGenerator struct {
	client      *genai.Client
	temperature float32
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini client for apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, temperature: 0.2}, nil
}

// Generate sends a single generateContent request.
func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
