package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/genbot/internal/cache"
	"github.com/simp-lee/genbot/internal/config"
	"github.com/simp-lee/genbot/internal/llm"
	"github.com/simp-lee/genbot/internal/middleware"
	"github.com/simp-lee/genbot/internal/module/auth"
	"github.com/simp-lee/genbot/internal/module/bot"
	"github.com/simp-lee/genbot/internal/module/conversation"
	"github.com/simp-lee/genbot/internal/module/document"
	"github.com/simp-lee/genbot/internal/module/lead"
	"github.com/simp-lee/genbot/internal/module/user"
)

const (
	defaultWriteTimeout = 60 * time.Second
	defaultHistoryTTL   = time.Hour
	defaultLLMTimeout   = 30 * time.Second
	defaultTokenExpiry  = 7 * 24 * time.Hour
	redisConnectTimeout = 5 * time.Second
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	db      *gorm.DB
	redis   *redis.Client
	history cache.HistoryStore
	logger  *logger.Logger
	cfg     *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, writeTimeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, the history cache, the language model,
// every module's repository, service and handler, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	startedAt := time.Now()
	success := false

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	if !cfg.Auth.Enabled {
		log.Warn("auth is disabled: admin endpoints are open")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if !success {
			config.CloseDatabase(db)
		}
	}()

	// 3. AutoMigrate in debug mode only; release deployments run genbotctl migrate.
	if cfg.Server.Mode == gin.DebugMode {
		if err := config.Migrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 4. History cache.
	history, redisClient, err := setupHistory(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("setup history cache: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeHistory(history)
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	// 5. Language model.
	generator, err := setupGenerator(&cfg.LLM, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup llm: %w", err)
	}

	// 6. Manual dependency injection: repository → service → handler.
	userRepo := user.NewUserRepository(db)
	botRepo := bot.NewBotRepository(db)
	docRepo := document.NewDocumentRepository(db)
	leadRepo := lead.NewLeadRepository(db)
	convRepo := conversation.NewConversationRepository(db)

	chatSvc := conversation.NewChatService(conversation.ChatDeps{
		Conversations: convRepo,
		Bots:          botRepo,
		Documents:     docRepo,
		History:       history,
		Generator:     generator,
		HistoryLimit:  cfg.Redis.HistoryMax,
		Logger:        log.Logger,
	})

	modules := []Module{
		user.NewModule(user.NewUserHandler(user.NewUserService(userRepo))),
		bot.NewModule(bot.NewBotHandler(bot.NewBotService(botRepo))),
		document.NewModule(document.NewDocumentHandler(document.NewDocumentService(docRepo, botRepo))),
		lead.NewModule(lead.NewLeadHandler(lead.NewLeadService(leadRepo, botRepo))),
		conversation.NewModule(
			conversation.NewConversationHandler(conversation.NewConversationService(convRepo, history, log.Logger)),
			conversation.NewChatHandler(chatSvc),
		),
	}

	// The auth endpoints only exist when tokens can be issued.
	var verifier middleware.TokenVerifier
	if cfg.Auth.Enabled {
		tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, config.Duration(cfg.Auth.TokenExpiry, defaultTokenExpiry))
		if err != nil {
			return nil, fmt.Errorf("setup auth: %w", err)
		}
		verifier = tokens
		modules = append(modules, auth.NewModule(auth.NewHandler(auth.NewService(tokens, userRepo))))
	}

	// 7. Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	handlers := []gin.HandlerFunc{
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustUpstreamRequestID,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter := middleware.NewIPRateLimiter(rl.Requests, config.Duration(rl.Window, time.Minute))
		handlers = append(handlers, middleware.RateLimit(limiter))
	}
	engine.Use(handlers...)

	// 8. Routes.
	deps := &RouteDeps{
		Modules:   modules,
		DB:        db,
		Verifier:  verifier,
		StartedAt: startedAt,
	}
	if redisClient != nil {
		deps.Redis = history
	}
	if err := RegisterRoutes(engine, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:  engine,
		db:      db,
		redis:   redisClient,
		history: history,
		logger:  log,
		cfg:     cfg,
	}, nil
}

// closeHistory stops an in-process history store's background work.
func closeHistory(h cache.HistoryStore) {
	if c, ok := h.(io.Closer); ok {
		_ = c.Close()
	}
}

// setupHistory returns the Redis backed history store when Redis is enabled
// and an in-process one otherwise. The Redis client is returned so the caller
// can close it.
func setupHistory(cfg *config.RedisConfig) (cache.HistoryStore, *redis.Client, error) {
	ttl := config.Duration(cfg.HistoryTTL, defaultHistoryTTL)
	if !cfg.Enabled {
		return cache.NewMemoryHistory(ttl, cfg.HistoryMax), nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisHistory(client, ttl, cfg.HistoryMax), client, nil
}

// setupGenerator returns the language model selected by cfg.Provider.
func setupGenerator(cfg *config.LLMConfig, log *slog.Logger) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.DefaultModel,
			Timeout:      config.Duration(cfg.Timeout, defaultLLMTimeout),
			MaxRetries:   cfg.MaxRetries,
		}, log)
	case config.ProviderEcho, "":
		log.Warn("using the echo language model; replies repeat the user's message")
		return llm.Echo{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// resolveCORSConfig builds the CORS middleware settings. Without an explicit
// allow-list, debug mode allows any origin and release mode none.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	corsConfig.MaxAge = config.Duration(cfg.MaxAge, corsConfig.MaxAge)

	return corsConfig
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and then closes the
// database, the Redis client and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := a.cfg.Server.Addr()
	srv := newHTTPServer(addr, a.engine, config.Duration(a.cfg.Server.Timeout, defaultWriteTimeout))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		config.CloseDatabase(a.db)
		log.Info("database connection closed")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error("redis close error", slog.Any("error", err))
		}
	}
	closeHistory(a.history)

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
