package client

import (
	"context"
	"net/http"
	"strings"

	"interview-gateway/internal/domain/entity"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultModel   = "claude-sonnet-4-20250514"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient is the primary text-generation backend (Messages API).
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    anthropicDefaultBaseURL,
		model:      model,
		httpClient: newHTTPClient(),
	}
}

// NewAnthropicClientWithBaseURL points the client at a custom base URL (proxies, tests).
func NewAnthropicClientWithBaseURL(apiKey, model, baseURL string) *AnthropicClient {
	c := NewAnthropicClient(apiKey, model)
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

func (c *AnthropicClient) Name() string  { return "anthropic" }
func (c *AnthropicClient) Model() string { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Generate(ctx context.Context, req entity.LLMRequest) (*entity.LLMResponse, error) {
	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var out anthropicResponse
	if err := postJSON(ctx, c.httpClient, c.Name(), c.baseURL+"/v1/messages", headers, body, &out); err != nil {
		return nil, err
	}

	for _, block := range out.Content {
		if block.Type == "text" {
			return &entity.LLMResponse{Content: block.Text, Model: out.Model}, nil
		}
	}
	return nil, entity.NewProviderError(c.Name(), "no text content in response")
}
