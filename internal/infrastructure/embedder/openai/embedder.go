// Package openai provides an Embedder implementation using OpenAI.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/resilience-core/internal/infrastructure/config"
)

// VectorSize is the dimension of text-embedding-3-small vectors.
const VectorSize = 1536

// MaxBatchSize caps the number of inputs sent in one embeddings request.
const MaxBatchSize = 256

// modelDimensions maps known embedding models to their vector sizes.
var modelDimensions = map[openai.EmbeddingModel]uint64{
	openai.SmallEmbedding3: VectorSize,
	openai.LargeEmbedding3: 3072,
	openai.AdaEmbeddingV2:  1536,
}

// Option configures an Embedder.
type Option func(*openai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig) {
		c.BaseURL = url
	}
}

// Embedder implements the Embedder interface using OpenAI.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder creates a new OpenAI embedder.
func NewEmbedder(cfg config.EmbedderConfig, opts ...Option) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	for _, opt := range opts {
		opt(&clientCfg)
	}

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	return &Embedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Dimensions returns the vector size of the configured model. Unknown models
// are assumed to match text-embedding-3-small.
func (e *Embedder) Dimensions() uint64 {
	if d, ok := modelDimensions[e.model]; ok {
		return d
	}
	return VectorSize
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	return embeddings[0], nil
}

// EmbedBatch generates vector embeddings for multiple texts, in input order.
// Inputs beyond MaxBatchSize are sent in further requests.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: e.model,
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("creating embeddings: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("creating embeddings: got %d vectors for %d inputs", len(resp.Data), end-start)
		}

		for _, data := range resp.Data {
			if data.Index < 0 || data.Index >= end-start {
				return nil, fmt.Errorf("creating embeddings: index %d out of range", data.Index)
			}
			embeddings[start+data.Index] = data.Embedding
		}
	}

	return embeddings, nil
}
