package main

import (
	"context"
	"fmt"
	"log/slog"

	"interview-gateway/internal/adapter/auth"
	"interview-gateway/internal/adapter/client"
	"interview-gateway/internal/adapter/store"
	"interview-gateway/internal/config"
	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"
	"interview-gateway/internal/usecase"

	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

// components is everything the server and CLI commands share.
type components struct {
	router       *usecase.ProviderRouter
	orchestrator *usecase.Orchestrator
	identity     *usecase.IdentityResolver
	admission    *usecase.AdmissionGate
	embedder     repository.Embedder
	closers      []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// buildProviders fills the routing table. A selector without a key gets a stand-in that fails
// with an auth error naming the missing variable.
func buildProviders(ctx context.Context, cfg config.LLMConfig) (map[entity.ProviderSelector]repository.AIProvider, *genai.Client, error) {
	table := make(map[entity.ProviderSelector]repository.AIProvider, 4)

	if cfg.AnthropicAPIKey != "" {
		table[entity.SelectorPrimary] = client.NewAnthropicClientWithBaseURL(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
	} else {
		table[entity.SelectorPrimary] = client.NewUnconfigured("anthropic", cfg.AnthropicModel, "ANTHROPIC_API_KEY")
	}

	if cfg.GroqAPIKey != "" {
		table[entity.SelectorFastFree] = client.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
	} else {
		table[entity.SelectorFastFree] = client.NewUnconfigured("groq", cfg.GroqModel, "GROQ_API_KEY")
	}

	if cfg.OpenRouterAPIKey != "" {
		table[entity.SelectorPayPerUse] = client.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL, cfg.OpenRouterReferer)
	} else {
		table[entity.SelectorPayPerUse] = client.NewUnconfigured("openrouter", cfg.OpenRouterModel, "OPENROUTER_API_KEY")
	}

	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		var err error
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init genai client: %w", err)
		}
		table[entity.SelectorGemini] = client.NewGeminiClientFromClient(genaiClient, cfg.GeminiModel)
	} else {
		table[entity.SelectorGemini] = client.NewUnconfigured("gemini", cfg.GeminiModel, "GEMINI_API_KEY")
	}

	return table, genaiClient, nil
}

func buildQuotaStore(ctx context.Context, cfg *config.Config) (repository.QuotaStore, func(), error) {
	if cfg.Quota.Backend != config.QuotaBackendRedis {
		slog.Warn("using in-process quota store; counts reset on restart and are not shared between instances")
		return store.NewMemoryQuotaStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return store.NewRedisQuotaStore(rdb), func() { rdb.Close() }, nil
}

func buildInterviewStore(ctx context.Context, cfg *config.Config) (repository.InterviewStore, func(), error) {
	if cfg.Database.URL == "" {
		slog.Warn("DATABASE_URL not set; interviews are kept in memory")
		return store.NewMemoryStore(), func() {}, nil
	}

	pg, err := store.ConnectPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

// buildQuestionIndex enables similar-question lookup when both Qdrant and Gemini are configured.
func buildQuestionIndex(ctx context.Context, cfg *config.Config, genaiClient *genai.Client) (repository.Embedder, repository.QuestionIndex, func(), error) {
	if cfg.Qdrant.Host == "" || genaiClient == nil {
		return nil, nil, func() {}, nil
	}

	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	index := store.NewQdrantQuestionIndex(qClient, cfg.Qdrant.Collection)
	if err := index.InitCollection(ctx, client.EmbeddingDimension); err != nil {
		qClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to init qdrant collection: %w", err)
	}
	embedder := client.NewEmbedderFromClient(genaiClient, cfg.LLM.GeminiEmbedModel)
	return embedder, index, func() { qClient.Close() }, nil
}

func buildVerifier(cfg config.AuthConfig) repository.TokenVerifier {
	switch {
	case cfg.SupabaseJWTSecret != "":
		return auth.NewJWTVerifier(cfg.SupabaseJWTSecret)
	case cfg.SupabaseURL != "":
		return auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}
	slog.Warn("no auth configured; every caller is anonymous")
	return nil
}

func build(ctx context.Context, cfg *config.Config) (*components, error) {
	c := &components{}

	table, genaiClient, err := buildProviders(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	c.router = usecase.NewProviderRouter(table, cfg.LLM.Timeout)

	quota, closeQuota, err := buildQuotaStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, closeQuota)

	interviews, closeStore, err := buildInterviewStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeStore)

	opts := []usecase.OrchestratorOption{usecase.WithEvaluationSchema(cfg.Interview.EvaluationSchema)}
	embedder, index, closeIndex, err := buildQuestionIndex(ctx, cfg, genaiClient)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeIndex)
	if index != nil {
		opts = append(opts, usecase.WithQuestionIndex(embedder, index))
		c.embedder = embedder
	}

	c.orchestrator = usecase.NewOrchestrator(c.router, interviews, cfg.LLM.DefaultProvider, opts...)
	c.identity = usecase.NewIdentityResolver(buildVerifier(cfg.Auth))
	c.admission = usecase.NewAdmissionGate(quota, cfg.Quota.DailyLimit)
	return c, nil
}
