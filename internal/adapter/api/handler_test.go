package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"interview-gateway/internal/adapter/report"
	"interview-gateway/internal/adapter/store"
	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"
	"interview-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jdReply = "```json\n" + `{"company":"Acme","role_title":"Product Manager","parsed_skills":["SQL","roadmapping"],` +
		`"parsed_responsibilities":["own the roadmap"],"parsed_qualifications":["5+ years"],"seniority_level":"Senior"}` + "\n```"
	questionsReply = `[{"questionText":"Tell me about a launch.","questionType":"behavioral","difficulty":"medium","skillTags":["execution"]},` +
		`{"questionText":"How would you size this market?","questionType":"technical","difficulty":"hard","skillTags":["analytics"]}]`
	evalReply = `{"score": 7, "strengths": "Clear structure", "weaknesses": "No metrics", "suggestion": "Quantify impact"}`

	jobText = "We are hiring a senior product manager to own our payments roadmap."
)

type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Generate(context.Context, entity.LLMRequest) (*entity.LLMResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return &entity.LLMResponse{Content: reply}, nil
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type countingQuota struct {
	inner repository.QuotaStore
	mu    sync.Mutex
	calls int
}

func (q *countingQuota) CheckAndConsume(ctx context.Context, key string, limit int) (entity.QuotaDecision, error) {
	q.mu.Lock()
	q.calls++
	q.mu.Unlock()
	return q.inner.CheckAndConsume(ctx, key, limit)
}

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

type failingQuota struct{}

func (failingQuota) CheckAndConsume(context.Context, string, int) (entity.QuotaDecision, error) {
	return entity.QuotaDecision{}, errors.New("redis: connection refused")
}

type testEnv struct {
	app      *fiber.App
	provider *scriptedProvider
	quota    *countingQuota
}

func newTestEnv(t *testing.T, provider *scriptedProvider, quota repository.QuotaStore, exposeRaw bool) *testEnv {
	t.Helper()
	if quota == nil {
		quota = store.NewMemoryQuotaStore()
	}
	counting := &countingQuota{inner: quota}

	router := usecase.NewProviderRouter(map[entity.ProviderSelector]repository.AIProvider{
		entity.SelectorPrimary:  provider,
		entity.SelectorFastFree: provider,
	}, time.Second)
	orch := usecase.NewOrchestrator(router, store.NewMemoryStore(), entity.SelectorPrimary)
	handler := NewHandler(HandlerConfig{
		Orchestrator: orch,
		Providers:    router,
		Renderer:     report.NewExcelRenderer(),
		ExposeRaw:    exposeRaw,
	})

	info := AppInfo{Name: "test", Version: "test", Env: "test"}
	app := NewApp(info)
	SetupRouter(app, info, handler,
		usecase.NewIdentityResolver(staticVerifier{"good-token": "user-1"}),
		usecase.NewAdmissionGate(counting, 5),
	)
	return &testEnv{app: app, provider: provider, quota: counting}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestAnonymousCallerExhaustsFreeLimit(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{replies: []string{jdReply}}, nil, false)
	headers := map[string]string{HeaderSessionID: "sess-A"}

	for _, want := range []string{"4", "3", "2", "1", "0"} {
		resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, headers)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Equal(t, want, resp.Header.Get(HeaderRateLimitRemaining))
		_, err := time.Parse(time.RFC3339, resp.Header.Get(HeaderRateLimitReset))
		assert.NoError(t, err)
	}

	resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, headers)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get(HeaderRateLimitRemaining))
	assert.Equal(t, "You've reached the free limit (5 per day). Sign up to continue!", body["message"])
	assert.Equal(t, resp.Header.Get(HeaderRateLimitReset), body["resetAt"])
	assert.Equal(t, 5, env.provider.Calls(), "blocked request must not reach the provider")

	// A different session has its own window.
	resp, _ = env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, map[string]string{HeaderSessionID: "sess-B"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", resp.Header.Get(HeaderRateLimitRemaining))
}

func TestAuthenticatedCallerBypassesQuota(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{replies: []string{jdReply}}, nil, false)
	headers := map[string]string{
		fiber.HeaderAuthorization: "Bearer good-token",
		HeaderSessionID:           "sess-A",
	}

	for i := 0; i < 20; i++ {
		resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, headers)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(HeaderRateLimitRemaining))
		assert.Equal(t, "user-1", body["userId"])
	}
	assert.Zero(t, env.quota.calls)
}

func TestRejectedTokenFallsBackToSession(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{replies: []string{jdReply}}, nil, false)

	resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, map[string]string{
		fiber.HeaderAuthorization: "Bearer expired",
		HeaderSessionID:           "sess-C",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", resp.Header.Get(HeaderRateLimitRemaining))
	assert.NotContains(t, body, "userId")
	assert.Equal(t, 1, env.quota.calls)
}

func TestProviderErrorsMapByKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"rate limited", entity.NewRateLimitedError("groq", "rate limited"), http.StatusTooManyRequests, "AI provider is busy. Please try again in a moment."},
		{"auth failed", entity.ErrorFromStatus("anthropic", 401, ""), http.StatusInternalServerError, "Internal server error"},
		{"other", entity.ErrorFromStatus("openrouter", 503, "overloaded"), http.StatusBadGateway, "AI provider request failed"},
		{"plain error", errors.New("connection reset"), http.StatusBadGateway, "AI provider request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &scriptedProvider{err: tt.err}, nil, false)
			resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText, "provider": "fast-free"}, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestUnusableAIOutput(t *testing.T) {
	missing := `{"company":"Acme"}`

	env := newTestEnv(t, &scriptedProvider{replies: []string{missing}}, nil, true)
	resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "AI returned invalid output", body["message"])
	assert.Equal(t, "missing field: role_title", body["detail"])
	assert.Equal(t, missing, body["raw"])

	env = newTestEnv(t, &scriptedProvider{replies: []string{"Sure! Here you go"}}, nil, false)
	resp, body = env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "AI returned invalid output", body["message"])
	assert.NotContains(t, body, "raw")
	assert.NotContains(t, body, "detail")
}

func TestQuotaStoreFailure(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{replies: []string{jdReply}}, failingQuota{}, false)

	resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Zero(t, env.provider.Calls())
}

func TestValidation(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{replies: []string{jdReply}}, nil, false)

	resp, body := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": "too short"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "rawText must be at least 20 characters", body["message"])

	resp, body = env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText, "provider": "mistral"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "unknown provider")

	resp, body = env.do(t, http.MethodPost, "/v1/interviews", fiber.Map{"jdAnalysisId": "nope", "interviewType": "mixed"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "jdAnalysisId must be a UUID", body["message"])

	resp, _ = env.do(t, http.MethodPost, "/v1/answers", fiber.Map{"questionId": "00000000-0000-0000-0000-000000000001"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/v1/interviews/00000000-0000-0000-0000-000000000001", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Interview not found", body["message"])
}

func TestInterviewFlow(t *testing.T) {
	provider := &scriptedProvider{replies: []string{jdReply, questionsReply, evalReply}}
	env := newTestEnv(t, provider, nil, false)
	auth := map[string]string{fiber.HeaderAuthorization: "Bearer good-token"}

	resp, analysis := env.do(t, http.MethodPost, "/v1/jd/parse", fiber.Map{"rawText": jobText}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product Manager", analysis["role_title"])
	assert.Equal(t, "Senior", analysis["seniority_level"])

	resp, generated := env.do(t, http.MethodPost, "/v1/interviews", fiber.Map{
		"jdAnalysisId":  analysis["id"],
		"interviewType": "mixed",
		"questionCount": 2,
	}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, generated)
	questions := generated["questions"].([]any)
	require.Len(t, questions, 2)
	first := questions[0].(map[string]any)
	assert.Equal(t, "Tell me about a launch.", first["questionText"])

	resp, eval := env.do(t, http.MethodPost, "/v1/answers", fiber.Map{
		"questionId": first["id"],
		"userAnswer": "We launched a new checkout and lifted conversion.",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, eval)
	assert.EqualValues(t, 7, eval["score"])
	assert.Equal(t, "Strengths: Clear structure\nWeaknesses: No metrics\nSuggestion: Quantify impact", eval["feedback"])
	assert.Empty(t, resp.Header.Get(HeaderRateLimitRemaining), "answers are not gated")

	sessionID := generated["sessionId"].(string)
	resp, view := env.do(t, http.MethodGet, "/v1/interviews/"+sessionID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := view["questions"].([]any)
	assert.EqualValues(t, 7, stored[0].(map[string]any)["score"])
	assert.Equal(t, "user-1", view["session"].(map[string]any)["userId"])

	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/v1/interviews/%s/report.xlsx", sessionID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), sessionID)
}

func TestMiscEndpoints(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{replies: []string{jdReply}}, nil, false)

	resp, body := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, body = env.do(t, http.MethodGet, "/v1/providers", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "primary", body["default"])
	assert.Len(t, body["providers"], 2)

	resp, body = env.do(t, http.MethodGet, "/v1/questions/similar?q=launch", nil, nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, "This feature is not configured", body["message"])
}
