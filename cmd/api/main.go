package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-videoquote/internal/analyzer"
	"github.com/noah-isme/backend-videoquote/internal/checkout"
	"github.com/noah-isme/backend-videoquote/internal/common"
	"github.com/noah-isme/backend-videoquote/internal/config"
	"github.com/noah-isme/backend-videoquote/internal/db"
	"github.com/noah-isme/backend-videoquote/internal/generation"
	"github.com/noah-isme/backend-videoquote/internal/health"
	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/llm"
	"github.com/noah-isme/backend-videoquote/internal/lock"
	"github.com/noah-isme/backend-videoquote/internal/obs"
	"github.com/noah-isme/backend-videoquote/internal/quote"
	"github.com/noah-isme/backend-videoquote/internal/ratelimit"
	"github.com/noah-isme/backend-videoquote/internal/resilience"
	"github.com/noah-isme/backend-videoquote/internal/security"
	"github.com/noah-isme/backend-videoquote/internal/session"
	"github.com/noah-isme/backend-videoquote/internal/share"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()
	zerolog.DefaultContextLogger = &logger

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "videoquote")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    "videoquote-api",
			ServiceVersion: envOrDefault("APP_VERSION", "dev"),
			Endpoint:       envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:       envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio:  sampling,
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	checks := map[string]health.Check{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	var backing share.Store
	switch cfg.ShareStoreDriver {
	case config.ShareStoreSQLite:
		sqliteStore, err := share.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("open sqlite share store")
		}
		defer sqliteStore.Close()
		checks["sqlite"] = func(ctx context.Context) error { return sqliteStore.DB.PingContext(ctx) }
		backing = sqliteStore
	default:
		if cfg.MigrateOnStart {
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				logger.Fatal().Err(err).Msg("run migrations")
			}
		}
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse database config")
		}
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = "videoquote-api"

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("ping database")
		}
		checks["db"] = pool.Ping
		backing = share.NewPGStore(pool)
	}
	shareStore := share.CachedStore{Store: backing, Client: redisClient, TTL: cfg.ShareCacheTTL}
	shareService := share.NewService(shareStore)
	shareHandler := share.NewHandler(share.HandlerConfig{Service: shareService})

	engine, err := cfg.PricingEngine()
	if err != nil {
		logger.Fatal().Err(err).Msg("configure pricing")
	}
	builder := quote.Builder{Engine: engine, Vendor: quote.DefaultVendor}

	// Generation makes exactly one upstream call per request.
	ideaLLM := &llm.Client{
		HTTP:        resilience.NewHTTPClient("llm", cfg.LLMTimeout, 1),
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
	}
	analysisLLM := &llm.Client{
		HTTP:        ideaLLM.HTTP,
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: 0.2,
		MaxTokens:   500,
	}
	if cfg.LLMAPIKey == "" {
		logger.Warn().Msg("LLM_API_KEY not set, idea generation and website analysis will fail")
	}

	sessionService := &session.Service{
		Repo:      session.Repo{Client: redisClient, TTL: cfg.SessionTTL},
		Locker:    lock.Locker{R: redisClient, Prefix: "lock:session:"},
		LockTTL:   cfg.SessionLockTTL,
		Generator: generation.LLMGenerator{Client: ideaLLM},
		MaxPool:   cfg.IdeasMaxPool,
		IDs:       idea.NewIDSource(nil),
		Builder:   builder,
		Shares:    shareService,
	}
	sessionHandler := session.NewHandler(session.HandlerConfig{Service: sessionService, PublicBaseURL: cfg.PublicBaseURL})

	analyzerHandler := &analyzer.Handler{Analyzer: analyzer.Analyzer{
		Fetcher:   analyzer.NewHTTPFetcher(cfg.AnalyzerFetchTimeout, cfg.AnalyzerAllowPrivate),
		Completer: analysisLLM,
	}}

	var provider checkout.Provider
	switch cfg.CheckoutProvider {
	case "stripe":
		provider = checkout.Stripe{
			HTTP:          resilience.NewHTTPClient("stripe", 15*time.Second, 3),
			BaseURL:       cfg.StripeBaseURL,
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}
	default:
		provider = &checkout.Mock{WebhookSecret: cfg.StripeWebhookSecret}
	}
	checkoutHandler := &checkout.Handler{
		Svc:       checkout.Service{Engine: engine, Provider: provider, BaseURL: cfg.PublicBaseURL},
		Replay:    redisClient,
		ReplayTTL: cfg.WebhookReplayTTL,
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	llmLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    ratelimit.KeyByClientIP("llm"),
			Window: time.Minute,
			Max:    cfg.RateLimitLLMPerMinute,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	shareLookupLimit, err := ratelimit.FixedWindow(redisClient, "rl:share", cfg.RateLimitShareLookup)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure share lookup limiter")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition", "Idempotent-Replayed", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(security.Headers{
		Enable:                cfg.SecurityHeadersEnabled,
		EnableHSTS:            cfg.SecurityHSTS,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	pprofEnabled := envBool("OBS_ENABLE_PPROF", !cfg.IsProduction())
	if pprofEnabled {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checks:  checks,
		Timeout: envDurationMillis("HEALTH_READY_TIMEOUT_MS", 500),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.With(idem.Middleware).HandleFunc("/create-checkout-session", checkoutHandler.Relay)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(llmLimit.Middleware).Post("/analyze", analyzerHandler.Analyze)

		v.Route("/sessions", func(s chi.Router) {
			s.Post("/", sessionHandler.Create)
			s.Route("/{id}", func(one chi.Router) {
				one.Get("/", sessionHandler.Get)
				one.Patch("/", sessionHandler.Update)
				one.With(llmLimit.Middleware).Post("/ideas", sessionHandler.Generate)
				one.Delete("/selection", sessionHandler.Clear)
				one.Post("/selection/{ideaId}", sessionHandler.Toggle)
				one.Delete("/selection/{ideaId}", sessionHandler.Remove)
				one.Get("/quote", sessionHandler.Quote)
				one.With(security.WithDocumentPolicy).Get("/document", sessionHandler.Document)
				one.With(idem.Middleware).Post("/share", sessionHandler.Share)
			})
		})

		v.With(idem.Middleware).Post("/shares", shareHandler.Create)
		v.With(shareLookupLimit).Get("/shares/{shareId}", shareHandler.Get)

		v.Post("/webhooks/checkout", checkoutHandler.Webhook)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 30*time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		health.SetReady(false)
		logger.Info().Msg("server draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Str("share_store", cfg.ShareStoreDriver).Str("checkout", provider.Name()).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{cfg.PublicBaseURL}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
