package entity

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ProviderSelector is the logical name a caller uses to pick a text-generation backend.
type ProviderSelector string

const (
	SelectorPrimary   ProviderSelector = "primary"     // Anthropic
	SelectorFastFree  ProviderSelector = "fast-free"   // Groq
	SelectorPayPerUse ProviderSelector = "pay-per-use" // OpenRouter
	SelectorGemini    ProviderSelector = "gemini"      // Google Gemini
)

var selectorAliases = map[string]ProviderSelector{
	"anthropic":  SelectorPrimary,
	"claude":     SelectorPrimary,
	"groq":       SelectorFastFree,
	"openrouter": SelectorPayPerUse,
	"google":     SelectorGemini,
}

// Selectors lists every known selector in display order.
func Selectors() []ProviderSelector {
	return []ProviderSelector{SelectorPrimary, SelectorFastFree, SelectorPayPerUse, SelectorGemini}
}

// ParseProviderSelector accepts a selector name or one of its backend aliases.
func ParseProviderSelector(s string) (ProviderSelector, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, sel := range Selectors() {
		if string(sel) == name {
			return sel, nil
		}
	}
	if sel, ok := selectorAliases[name]; ok {
		return sel, nil
	}
	return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidRequest, s)
}

// LLMRequest is a single-shot text-generation call.
type LLMRequest struct {
	Prompt    string
	MaxTokens int
}

// LLMResponse is the normalized result of a text-generation call.
type LLMResponse struct {
	Content  string        `json:"content"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Latency  time.Duration `json:"-"`
}

type LLMErrorKind int

const (
	LLMErrorOther LLMErrorKind = iota
	LLMErrorRateLimited
	LLMErrorAuthFailed
)

func (k LLMErrorKind) String() string {
	switch k {
	case LLMErrorRateLimited:
		return "rate_limited"
	case LLMErrorAuthFailed:
		return "auth_failed"
	default:
		return "other"
	}
}

// LLMError is the closed error contract every provider integration maps its failures into.
// Callers match the kind with errors.Is against ErrProviderRateLimited, ErrProviderAuth or
// ErrProviderFailed and never on the provider.
type LLMError struct {
	Kind     LLMErrorKind
	Provider string
	Status   int
	Message  string
}

func (e *LLMError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *LLMError) Is(target error) bool {
	switch target {
	case ErrProviderRateLimited:
		return e.Kind == LLMErrorRateLimited
	case ErrProviderAuth:
		return e.Kind == LLMErrorAuthFailed
	case ErrProviderFailed:
		return e.Kind == LLMErrorOther
	}
	return false
}

func NewRateLimitedError(provider, message string) *LLMError {
	return &LLMError{Kind: LLMErrorRateLimited, Provider: provider, Status: http.StatusTooManyRequests, Message: message}
}

func NewAuthFailedError(provider, message string) *LLMError {
	return &LLMError{Kind: LLMErrorAuthFailed, Provider: provider, Message: message}
}

func NewProviderError(provider, message string) *LLMError {
	return &LLMError{Kind: LLMErrorOther, Provider: provider, Message: message}
}

// ErrorFromStatus is the shared status table: 429 rate limited, 401 auth failed, anything else other.
// An empty message falls back to "provider returned <status>".
func ErrorFromStatus(provider string, status int, message string) *LLMError {
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("provider returned %d", status)
	}
	kind := LLMErrorOther
	switch status {
	case http.StatusTooManyRequests:
		kind = LLMErrorRateLimited
	case http.StatusUnauthorized:
		kind = LLMErrorAuthFailed
	}
	return &LLMError{Kind: kind, Provider: provider, Status: status, Message: message}
}
