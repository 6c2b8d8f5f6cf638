// Package embedding converts free text into fixed-dimension unit-norm
// vectors for semantic comparison.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
)

// Provider generates embeddings. Implementations must always return a
// unit-norm vector of Dimensions() length, or an error. Callers must not
// substitute a zero vector on failure: a zero vector is orthogonal to
// everything and would corrupt similarity ranking.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Known dimensionality per Gemini embedding model.
var modelDimensions = map[string]int{
	"embedding-001":      768,
	"text-embedding-004": 768,
}

const defaultDimensions = 768

// GeminiProvider generates embeddings with the Gemini embedding models.
type GeminiProvider struct {
	model      *genai.EmbeddingModel
	dimensions int
}

// NewGeminiProvider creates a provider backed by the given SDK client.
func NewGeminiProvider(client *genai.Client, model string) (*GeminiProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("embedding model name is required")
	}

	dimensions, ok := modelDimensions[model]
	if !ok {
		dimensions = defaultDimensions
	}

	return &GeminiProvider{
		model:      client.EmbeddingModel(model),
		dimensions: dimensions,
	}, nil
}

// Embed generates a unit-norm embedding for the given text.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	resp, err := p.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("embedding response has no values")
	}

	values := resp.Embedding.Values
	if len(values) != p.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(values), p.dimensions)
	}

	return normalize(values)
}

// Dimensions returns the fixed embedding vector size.
func (p *GeminiProvider) Dimensions() int {
	return p.dimensions
}

// normalize scales the vector to Euclidean norm 1. A zero vector cannot be
// normalized and is rejected.
func normalize(values []float32) ([]float32, error) {
	var sum float64
	for _, v := range values {
		sum += float64(v) * float64(v)
	}

	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return nil, fmt.Errorf("embedding is a zero vector")
	}

	normalized := make([]float32, len(values))
	for i, v := range values {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized, nil
}
