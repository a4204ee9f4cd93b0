package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-gateway/internal/domain/entity"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	maxErrorBodyBytes  = 64 << 10
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// postJSON sends body to url and decodes a 2xx reply into out. Any other status becomes an
// *entity.LLMError through the shared status table.
func postJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return entity.NewProviderError(provider, fmt.Sprintf("marshaling request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return entity.NewProviderError(provider, fmt.Sprintf("creating request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return entity.NewProviderError(provider, "request timed out")
		}
		return entity.NewProviderError(provider, fmt.Sprintf("executing request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return entity.ErrorFromStatus(provider, resp.StatusCode, errorMessage(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return entity.NewProviderError(provider, fmt.Sprintf("decoding response: %v", err))
	}
	return nil
}

// errorMessage pulls a human-readable message out of a provider error body.
// Both Anthropic and OpenAI-compatible APIs use {"error": {"message": ...}}.
func errorMessage(raw []byte) string {
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if json.Unmarshal(body.Error, &flat) == nil && flat != "" {
			return flat
		}
	}
	return strings.TrimSpace(body.Message)
}
