package client

import (
	"context"
	"errors"
	"fmt"

	"interview-gateway/internal/domain/entity"

	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.5-flash"

// GeminiClient generates text through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient opens a Gemini API client for apiKey. A non-empty baseURL overrides the
// endpoint (tests).
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	c, err := newGenAIClient(ctx, apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	return NewGeminiClientFromClient(c, model), nil
}

func NewGeminiClientFromClient(c *genai.Client, model string) *GeminiClient {
	if model == "" {
		model = geminiDefaultModel
	}
	return &GeminiClient{client: c, model: model}
}

func newGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init genai client: %w", err)
	}
	return c, nil
}

func (g *GeminiClient) Name() string  { return "gemini" }
func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Generate(ctx context.Context, req entity.LLMRequest) (*entity.LLMResponse, error) {
	var cfg *genai.GenerateContentConfig
	if req.MaxTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, geminiError(g.Name(), err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, entity.NewProviderError(g.Name(), "no candidates in response")
	}

	model := result.ModelVersion
	if model == "" {
		model = g.model
	}
	return &entity.LLMResponse{Content: result.Text(), Model: model}, nil
}

// geminiError maps SDK failures through the shared status table.
func geminiError(provider string, err error) *entity.LLMError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return entity.ErrorFromStatus(provider, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return entity.ErrorFromStatus(provider, apiErrPtr.Code, apiErrPtr.Message)
	}
	return entity.NewProviderError(provider, err.Error())
}
