package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

// Share store drivers.
const (
	ShareStorePostgres = "postgres"
	ShareStoreSQLite   = "sqlite"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	PublicBaseURL      string
	CORSAllowedOrigins []string
	BodyLimitBytes     int64

	DatabaseURL      string
	ShareStoreDriver string
	SQLitePath       string
	MigrateOnStart   bool
	RedisURL         string

	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTimeout     time.Duration
	LLMTemperature float64

	AnalyzerFetchTimeout time.Duration
	AnalyzerAllowPrivate bool

	PricingUnitPriceCents int64
	PricingDiscountPolicy string
	IdeasMaxPool          int

	SessionTTL     time.Duration
	SessionLockTTL time.Duration
	ShareCacheTTL  time.Duration
	IdempotencyTTL time.Duration

	CheckoutProvider    string
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeBaseURL       string
	WebhookReplayTTL    time.Duration

	RateLimitLLMPerMinute int
	RateLimitShareLookup  string

	SecurityHeadersEnabled bool
	SecurityHSTS           bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		PublicBaseURL:      strings.TrimRight(valueOrDefault(k.String("PUBLIC_BASE_URL"), "http://localhost:5173"), "/"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		BodyLimitBytes:     parseInt64(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20),

		DatabaseURL:      k.String("DATABASE_URL"),
		ShareStoreDriver: strings.ToLower(valueOrDefault(k.String("SHARE_STORE_DRIVER"), ShareStorePostgres)),
		SQLitePath:       valueOrDefault(k.String("SQLITE_PATH"), "videoquote.db"),
		MigrateOnStart:   parseBool(valueOrDefault(k.String("MIGRATE_ON_START"), "true")),
		RedisURL:         k.String("REDIS_URL"),

		LLMAPIKey:      k.String("LLM_API_KEY"),
		LLMBaseURL:     valueOrDefault(k.String("LLM_BASE_URL"), "https://api.openai.com/v1"),
		LLMModel:       valueOrDefault(k.String("LLM_MODEL"), "gpt-4"),
		LLMTimeout:     parseDuration(k.String("LLM_TIMEOUT"), "60s"),
		LLMTemperature: parseFloat(k.String("LLM_TEMPERATURE"), 0.8),

		AnalyzerFetchTimeout: parseDuration(k.String("ANALYZER_FETCH_TIMEOUT"), "10s"),
		AnalyzerAllowPrivate: parseBool(k.String("ANALYZER_ALLOW_PRIVATE")),

		PricingUnitPriceCents: parseInt64(k.String("PRICING_UNIT_PRICE_CENTS"), int64(pricing.DefaultUnitPrice)),
		PricingDiscountPolicy: strings.ToLower(valueOrDefault(k.String("PRICING_DISCOUNT_POLICY"), pricing.PolicyBundle.Name)),
		IdeasMaxPool:          int(parseInt64(k.String("IDEAS_MAX_POOL"), 30)),

		SessionTTL:     parseDuration(k.String("SESSION_TTL"), "72h"),
		SessionLockTTL: parseDuration(k.String("SESSION_LOCK_TTL"), "90s"),
		ShareCacheTTL:  parseDuration(k.String("SHARE_CACHE_TTL"), "24h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		CheckoutProvider:    strings.ToLower(valueOrDefault(k.String("CHECKOUT_PROVIDER"), "mock")),
		StripeSecretKey:     k.String("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: k.String("STRIPE_WEBHOOK_SECRET"),
		StripeBaseURL:       valueOrDefault(k.String("STRIPE_BASE_URL"), "https://api.stripe.com"),
		WebhookReplayTTL:    parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "72h"),

		RateLimitLLMPerMinute: int(parseInt64(k.String("RATE_LIMIT_LLM_PER_MINUTE"), 10)),
		RateLimitShareLookup:  valueOrDefault(k.String("RATE_LIMIT_SHARE_LOOKUP"), "60-M"),

		SecurityHeadersEnabled: parseBool(valueOrDefault(k.String("SECURE_HEADERS_ENABLED"), "true")),
		SecurityHSTS:           parseBool(k.String("SECURE_HSTS_ENABLED")),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	switch cfg.ShareStoreDriver {
	case ShareStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when SHARE_STORE_DRIVER=postgres")
		}
	case ShareStoreSQLite:
	default:
		return nil, fmt.Errorf("unsupported SHARE_STORE_DRIVER %q", cfg.ShareStoreDriver)
	}
	if _, err := cfg.PricingEngine(); err != nil {
		return nil, err
	}
	if cfg.IdeasMaxPool <= 0 {
		return nil, errors.New("IDEAS_MAX_POOL must be positive")
	}
	if cfg.CheckoutProvider == "stripe" && cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required when CHECKOUT_PROVIDER=stripe")
	}

	return cfg, nil
}

// PricingEngine builds the single pricing engine shared by every price consumer.
func (c *Config) PricingEngine() (pricing.Engine, error) {
	policy, err := pricing.PolicyByName(c.PricingDiscountPolicy)
	if err != nil {
		return pricing.Engine{}, fmt.Errorf("PRICING_DISCOUNT_POLICY: %w", err)
	}
	if c.PricingUnitPriceCents <= 0 {
		return pricing.Engine{}, errors.New("PRICING_UNIT_PRICE_CENTS must be positive")
	}
	return pricing.NewEngine(pricing.Money(c.PricingUnitPriceCents), policy)
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
