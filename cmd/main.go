package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/auth"
	"github.com/Kosench/tinyapp/internal/cache"
	"github.com/Kosench/tinyapp/internal/config"
	"github.com/Kosench/tinyapp/internal/database"
	"github.com/Kosench/tinyapp/internal/handler"
	"github.com/Kosench/tinyapp/internal/logger"
	"github.com/Kosench/tinyapp/internal/repository"
	"github.com/Kosench/tinyapp/internal/service"
)

const version = "1.0.0"

type stores struct {
	urls   repository.URLRepository
	users  repository.UserRepository
	visits repository.VisitRepository
	db     *sql.DB
}

type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	stores *stores
	redis  *cache.RedisClient
	router *gin.Engine
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty || cfg.IsDevelopment())

	a, err := newApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start application")
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.serve(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}

	log.Info().Msg("server gracefully stopped")
}

// newApp собирает хранилища, кэш, сервисы и роутер
func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	st, err := openStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	a := &app{cfg: cfg, log: log, stores: st}

	// Подключаемся к Redis
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			CacheTTL:     cfg.Redis.CacheTTL,
			Namespace:    "tinyapp",
		})
		if err != nil {
			// Продолжаем без кэша
			log.Warn().Err(err).Msg("failed to connect to Redis, running without cache")
		} else {
			a.redis = redisClient
			log.Info().Msg("connected to Redis")
		}
	}

	rateLimit := handler.RateLimitConfig{
		Limiter:  cache.NewMemoryRateLimiter(),
		Keys:     cache.NewKeyBuilder("tinyapp"),
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	}

	if a.redis != nil {
		st.urls = repository.NewCachedURLRepository(st.urls, a.redis, a.redis.KeyBuilder(), log)
		rateLimit.Limiter = a.redis
		rateLimit.Keys = a.redis.KeyBuilder()
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.SessionTTL)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	urlService := service.NewURLService(st.urls, st.visits, service.URLServiceConfig{
		BaseURL:         cfg.GetBaseURL(),
		ShortCodeLength: cfg.App.ShortCodeLength,
		MaxRetries:      cfg.App.MaxRetries,
	}, log)
	userService := service.NewUserService(st.users, auth.NewBcryptHasher(cfg.Auth.BcryptCost), cfg.App.MaxRetries, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.router = handler.NewRouter(handler.RouterConfig{
		URLService:  urlService,
		UserService: userService,
		Tokens:      tokens,
		Cookies: handler.CookieConfig{
			Session: cfg.Auth.SessionCookie,
			Visitor: cfg.Auth.VisitorCookie,
			Secure:  cfg.Auth.SecureCookies,
		},
		RateLimit:      rateLimit,
		AllowedOrigins: cfg.GetAllowedOrigins(),
		Logger:         log,
	})

	a.router.GET("/health", a.health)
	a.router.GET("/info", a.info)

	return a, nil
}

func (a *app) health(c *gin.Context) {
	services := gin.H{"storage": a.cfg.Storage.Driver}
	response := gin.H{"status": "healthy", "services": services}

	// Проверяем БД
	if a.stores.db != nil {
		if err := database.HealthCheck(c.Request.Context(), a.stores.db); err != nil {
			services["database"] = "unhealthy"
			response["status"] = "degraded"
		} else {
			services["database"] = "healthy"
		}
	}

	// Проверяем Redis
	if a.redis != nil {
		if err := a.redis.HealthCheck(c.Request.Context()); err != nil {
			services["cache"] = "unhealthy"
			response["status"] = "degraded"
		} else {
			services["cache"] = "healthy"
		}
	} else {
		services["cache"] = "disabled"
	}

	statusCode := http.StatusOK
	if response["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

func (a *app) info(c *gin.Context) {
	info := gin.H{
		"service":        "tinyapp",
		"version":        version,
		"storage_driver": a.cfg.Storage.Driver,
		"cache_enabled":  a.redis != nil,
	}

	if a.stores.db != nil {
		dbVersion, _ := database.GetVersion(c.Request.Context(), a.stores.db)
		info["database_driver"] = "pgx"
		info["database_version"] = dbVersion
	}

	if a.redis != nil {
		info["cache_driver"] = "redis"
	}

	c.JSON(http.StatusOK, info)
}

// serve держит HTTP сервер до отмены ctx, затем дает 5 секунд на завершение запросов
func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:           a.cfg.GetServerAddress(),
		Handler:        a.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("addr", srv.Addr).
			Str("base_url", a.cfg.GetBaseURL()).
			Str("storage", a.cfg.Storage.Driver).
			Bool("cache", a.redis != nil).
			Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close Redis client")
		}
	}
	if a.stores.db != nil {
		if err := a.stores.db.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
	}
}

// openStores выбирает хранилище: память процесса или PostgreSQL
func openStores(cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Info().Msg("using in-memory storage, data is lost on restart")
		return &stores{
			urls:   repository.NewMemoryURLRepository(),
			users:  repository.NewMemoryUserRepository(),
			visits: repository.NewMemoryVisitRepository(),
		}, nil
	}

	opts := database.Options{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(opts.DSN(), log); err != nil {
			return nil, err
		}
	}

	db, err := database.Connect(opts)
	if err != nil {
		return nil, err
	}

	log.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("connected to database")

	return &stores{
		urls:   repository.NewPostgresURLRepository(db),
		users:  repository.NewPostgresUserRepository(db),
		visits: repository.NewPostgresVisitRepository(db),
		db:     db,
	}, nil
}
