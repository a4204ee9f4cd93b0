package client

import (
	"context"
	"net/http"
	"strings"

	"interview-gateway/internal/domain/entity"
)

const (
	groqDefaultBaseURL       = "https://api.groq.com/openai/v1"
	groqDefaultModel         = "llama-3.3-70b-versatile"
	openRouterDefaultBaseURL = "https://openrouter.ai/api/v1"
	openRouterDefaultModel   = "anthropic/claude-3.5-sonnet"
	openRouterTitle          = "Interview Prep"
)

// OpenAICompatClient talks to any chat-completions API. Groq and OpenRouter both use it.
type OpenAICompatClient struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	headers    map[string]string
	httpClient *http.Client
}

func newOpenAICompatClient(name, apiKey, baseURL, model string) *OpenAICompatClient {
	return &OpenAICompatClient{
		name:       name,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		headers:    map[string]string{},
		httpClient: newHTTPClient(),
	}
}

// NewGroqClient builds the fast-free backend. An empty baseURL or model uses the defaults.
func NewGroqClient(apiKey, model, baseURL string) *OpenAICompatClient {
	if baseURL == "" {
		baseURL = groqDefaultBaseURL
	}
	if model == "" {
		model = groqDefaultModel
	}
	return newOpenAICompatClient("groq", apiKey, baseURL, model)
}

// NewOpenRouterClient builds the pay-per-use backend. OpenRouter asks callers to identify
// themselves with HTTP-Referer and X-Title.
func NewOpenRouterClient(apiKey, model, baseURL, referer string) *OpenAICompatClient {
	if baseURL == "" {
		baseURL = openRouterDefaultBaseURL
	}
	if model == "" {
		model = openRouterDefaultModel
	}
	c := newOpenAICompatClient("openrouter", apiKey, baseURL, model)
	if referer != "" {
		c.headers["HTTP-Referer"] = referer
	}
	c.headers["X-Title"] = openRouterTitle
	return c
}

func (c *OpenAICompatClient) Name() string  { return c.name }
func (c *OpenAICompatClient) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAICompatClient) Generate(ctx context.Context, req entity.LLMRequest) (*entity.LLMResponse, error) {
	body := chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	for k, v := range c.headers {
		headers[k] = v
	}

	var out chatResponse
	if err := postJSON(ctx, c.httpClient, c.name, c.baseURL+"/chat/completions", headers, body, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, entity.NewProviderError(c.name, "no choices in response")
	}
	return &entity.LLMResponse{Content: out.Choices[0].Message.Content, Model: out.Model}, nil
}
