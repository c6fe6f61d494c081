package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"sourcingagent/backend/internal/config"
	"sourcingagent/backend/internal/database"
	"sourcingagent/backend/internal/handlers"
	"sourcingagent/backend/internal/logging"
	"sourcingagent/backend/internal/middlewares"
	"sourcingagent/backend/internal/providers"
	"sourcingagent/backend/internal/repositories"
	"sourcingagent/backend/internal/routes"
	"sourcingagent/backend/internal/services"
	"sourcingagent/backend/internal/translate"
)

// NewServer builds the whole application: config, database, redis, the
// configured search provider and translator, and every service and handler,
// and returns a ready-to-run HTTP server.
func NewServer(ctx context.Context, log *logging.Logger) (*http.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.RunMigrations(pool); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("connected to postgres", "host", cfg.DBHost, "database", cfg.DBDatabase)

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	{
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr, err)
		}
	}
	log.Info("connected to redis", "addr", cfg.RedisAddr)

	translator, err := translate.NewOpenAITranslator(translate.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.TranslatorTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build translator: %w", err)
	}

	var provider providers.SearchProvider
	switch cfg.SearchProvider {
	case config.ProviderGoogle:
		provider, err = providers.NewGoogleProvider(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID)
	case config.ProviderSerper:
		provider, err = providers.NewSerperProvider(providers.SerperConfig{
			APIKey:   cfg.SerperAPIKey,
			PageSize: cfg.SearchPageSize,
		})
	default:
		err = fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("build search provider: %w", err)
	}
	log.Info("search provider ready", "provider", cfg.SearchProvider)

	// Dependency injection
	userRepo := repositories.NewUserRepository(pool)
	queryRepo := repositories.NewSearchQueryRepository(pool)
	resultRepo := repositories.NewSearchResultRepository(pool)
	redisRepo := repositories.NewRedisRepository(rdb)

	secret := []byte(cfg.AccessTokenSecret)

	generatorService := services.NewGeneratorService(queryRepo, translator, cfg.TranslatorTimeout, log)
	executorService := services.NewExecutorService(queryRepo, resultRepo, provider, redisRepo, services.ExecutorConfig{
		MaxResults:    cfg.MaxSearchResults,
		PageSize:      cfg.SearchPageSize,
		RetryAttempts: cfg.PageRetryAttempts,
		PageTimeout:   cfg.ProviderTimeout,
	}, log)
	searchService := services.NewSearchService(generatorService, executorService, queryRepo, resultRepo)
	exportService := services.NewExportService(searchService, resultRepo)
	authService := services.NewAuthService(userRepo, redisRepo, secret, cfg.AccessTokenTTL, log)
	userService := services.NewUserService(userRepo, log)

	authHandler := handlers.NewAuthHandler(authService, userService)
	searchHandler := handlers.NewSearchHandler(searchService, exportService)
	adminHandler := handlers.NewAdminHandler(userService, searchService)

	authenticate := middlewares.Authenticate(secret, userRepo, redisRepo)

	router := gin.Default()
	router.Use(cors.Default())
	routes.RegisterRoutes(router, authenticate, authHandler, searchHandler, adminHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		// CSV exports stream page by page, so writes get a generous window.
		WriteTimeout: 2 * time.Minute,
	}

	return srv, nil
}
