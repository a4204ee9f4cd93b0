package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"interview-gateway/internal/domain/entity"
)

const (
	EnvProduction = "production"

	QuotaBackendMemory = "memory"
	QuotaBackendRedis  = "redis"
)

// Config holds all configuration for the gateway.
type Config struct {
	Server    ServerConfig
	Quota     QuotaConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Interview InterviewConfig

	// malformed numeric and duration values seen by Load, reported by Validate
	parseErrs []error
}

type ServerConfig struct {
	Port    int
	Env     string
	Version string
}

// QuotaConfig controls the anonymous free tier.
type QuotaConfig struct {
	DailyLimit int
	Backend    string
}

type RedisConfig struct {
	Address  string
	Password string
}

// LLMConfig holds the routing table inputs. Empty API keys leave the selector unconfigured.
type LLMConfig struct {
	DefaultProvider entity.ProviderSelector
	Timeout         time.Duration

	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterReferer string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiEmbedModel string
}

type AuthConfig struct {
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
}

// DatabaseConfig is optional. Without a URL interviews are kept in memory.
type DatabaseConfig struct {
	URL string
}

// QdrantConfig is optional. Without a host similar-question lookup is disabled.
type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
}

type InterviewConfig struct {
	EvaluationSchema entity.EvaluationSchema
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:    env.asInt("PORT", 8080),
			Env:     getEnv("ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Quota: QuotaConfig{
			DailyLimit: env.asInt("QUOTA_DAILY_LIMIT", entity.DefaultDailyLimit),
			Backend:    strings.ToLower(getEnv("QUOTA_BACKEND", QuotaBackendMemory)),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		LLM: LLMConfig{
			DefaultProvider: entity.ProviderSelector(getEnv("DEFAULT_PROVIDER", string(entity.SelectorPrimary))),
			Timeout:         env.asDuration("LLM_TIMEOUT", 60*time.Second),

			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
			AnthropicModel:   getEnv("ANTHROPIC_MODEL", ""),

			GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
			GroqBaseURL: getEnv("GROQ_BASE_URL", ""),
			GroqModel:   getEnv("GROQ_MODEL", ""),

			OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
			OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", ""),
			OpenRouterModel:   getEnv("OPENROUTER_MODEL", ""),
			OpenRouterReferer: getEnv("OPENROUTER_REFERER", ""),

			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", ""),
			GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", ""),
		},
		Auth: AuthConfig{
			SupabaseURL:       getEnv("SUPABASE_URL", ""),
			SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
			SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Qdrant: QdrantConfig{
			Host:       getEnv("QDRANT_HOST", ""),
			Port:       env.asInt("QDRANT_PORT", 6334),
			Collection: getEnv("QDRANT_COLLECTION", "interview_questions"),
		},
		Interview: InterviewConfig{
			EvaluationSchema: entity.EvaluationSchema(strings.ToLower(getEnv("EVALUATION_SCHEMA", string(entity.EvaluationV2)))),
		},
	}

	cfg.parseErrs = env.errs

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes the default provider alias.
func (c *Config) Validate() error {
	if err := errors.Join(c.parseErrs...); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Quota.DailyLimit < 1 {
		return fmt.Errorf("QUOTA_DAILY_LIMIT must be positive, got %d", c.Quota.DailyLimit)
	}

	switch c.Quota.Backend {
	case QuotaBackendMemory:
	case QuotaBackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("REDIS_ADDR is required when QUOTA_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown QUOTA_BACKEND %q (want memory or redis)", c.Quota.Backend)
	}

	sel, err := entity.ParseProviderSelector(string(c.LLM.DefaultProvider))
	if err != nil {
		return fmt.Errorf("DEFAULT_PROVIDER: %w", err)
	}
	c.LLM.DefaultProvider = sel
	if key, envVar := c.LLM.Credential(sel); key == "" {
		return fmt.Errorf("%s is required for the default provider %q", envVar, sel)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	if _, ok := entity.ParseEvaluationSchema(string(c.Interview.EvaluationSchema)); !ok {
		return fmt.Errorf("unknown EVALUATION_SCHEMA %q (want v1 or v2)", c.Interview.EvaluationSchema)
	}
	if c.Auth.SupabaseJWTSecret == "" && c.Auth.SupabaseURL != "" && c.Auth.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required with SUPABASE_URL")
	}
	return nil
}

// Credential returns the API key for a selector and the variable it is read from.
func (l LLMConfig) Credential(sel entity.ProviderSelector) (key, envVar string) {
	switch sel {
	case entity.SelectorPrimary:
		return l.AnthropicAPIKey, "ANTHROPIC_API_KEY"
	case entity.SelectorFastFree:
		return l.GroqAPIKey, "GROQ_API_KEY"
	case entity.SelectorPayPerUse:
		return l.OpenRouterAPIKey, "OPENROUTER_API_KEY"
	case entity.SelectorGemini:
		return l.GeminiAPIKey, "GEMINI_API_KEY"
	}
	return "", ""
}

func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Env, EnvProduction)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and records values that do not parse, so a typo fails
// validation instead of falling back to the default.
type envReader struct {
	errs []error
}

func (r *envReader) asInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return intValue
}

func (r *envReader) asDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	duration, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a duration such as 60s, got %q", key, value))
		return defaultValue
	}
	return duration
}
