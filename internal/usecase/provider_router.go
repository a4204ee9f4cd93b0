package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"
)

const defaultCallTimeout = 60 * time.Second

// ProviderRouter dispatches a generation call to the integration registered for a selector.
// One attempt per call: no retries, no fallback, no caching.
type ProviderRouter struct {
	providers map[entity.ProviderSelector]repository.AIProvider
	timeout   time.Duration
	log       *slog.Logger
}

func NewProviderRouter(providers map[entity.ProviderSelector]repository.AIProvider, timeout time.Duration) *ProviderRouter {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	table := make(map[entity.ProviderSelector]repository.AIProvider, len(providers))
	for sel, p := range providers {
		table[sel] = p
	}
	return &ProviderRouter{
		providers: table,
		timeout:   timeout,
		log:       slog.Default().With("component", "router"),
	}
}

// Call runs prompt on the selected provider. Every failure is an *entity.LLMError.
func (r *ProviderRouter) Call(ctx context.Context, selector entity.ProviderSelector, prompt string, maxTokens int) (*entity.LLMResponse, error) {
	p, ok := r.providers[selector]
	if !ok {
		return nil, entity.NewProviderError("router", fmt.Sprintf("unknown provider %q", selector))
	}

	// Bounded wait, tied to the inbound request so an abandoned request cancels the call.
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.Generate(callCtx, entity.LLMRequest{Prompt: prompt, MaxTokens: maxTokens})
	latency := time.Since(start)
	if err != nil {
		llmErr := normalizeError(callCtx, p.Name(), err)
		r.log.Warn("provider call failed",
			"selector", selector,
			"provider", p.Name(),
			"kind", llmErr.Kind.String(),
			"status", llmErr.Status,
			"latency_ms", latency.Milliseconds(),
			"error", llmErr.Message,
		)
		return nil, llmErr
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, entity.NewProviderError(p.Name(), "empty response from AI provider")
	}

	resp.Provider = p.Name()
	if resp.Model == "" {
		resp.Model = p.Model()
	}
	resp.Latency = latency
	r.log.Debug("provider call complete", "selector", selector, "model", resp.Model, "latency_ms", latency.Milliseconds())
	return resp, nil
}

func normalizeError(ctx context.Context, provider string, err error) *entity.LLMError {
	var llmErr *entity.LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return entity.NewProviderError(provider, "request timed out")
	}
	return entity.NewProviderError(provider, err.Error())
}

// ProviderInfo describes a routing table entry.
type ProviderInfo struct {
	Selector   entity.ProviderSelector `json:"value"`
	Provider   string                  `json:"provider"`
	Model      string                  `json:"model"`
	Configured bool                    `json:"configured"`
}

// Providers lists the table in selector order.
func (r *ProviderRouter) Providers() []ProviderInfo {
	var out []ProviderInfo
	for _, sel := range entity.Selectors() {
		p, ok := r.providers[sel]
		if !ok {
			continue
		}
		configured := true
		if c, ok := p.(interface{ Configured() bool }); ok {
			configured = c.Configured()
		}
		out = append(out, ProviderInfo{Selector: sel, Provider: p.Name(), Model: p.Model(), Configured: configured})
	}
	return out
}
