package client

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

const geminiDefaultEmbedModel = "text-embedding-004"

// EmbeddingDimension is the vector size of the default embedding model.
const EmbeddingDimension = 768

type Embedder struct {
	client *genai.Client
	model  string
}

func NewEmbedder(ctx context.Context, apiKey, model, baseURL string) (*Embedder, error) {
	c, err := newGenAIClient(ctx, apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	return NewEmbedderFromClient(c, model), nil
}

func NewEmbedderFromClient(c *genai.Client, model string) *Embedder {
	if model == "" {
		model = geminiDefaultEmbedModel
	}
	return &Embedder{client: c, model: model}
}

func (e *Embedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, errors.New("embedding response was empty")
	}
	return res.Embeddings[0].Values, nil
}
