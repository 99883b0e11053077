package handler

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/cache"
)

type RateLimitConfig struct {
	Limiter  cache.RateLimiter
	Keys     *cache.KeyBuilder
	Requests int
	Window   time.Duration
}

type RouterConfig struct {
	URLService     URLService
	UserService    UserService
	Tokens         TokenManager
	Cookies        CookieConfig
	RateLimit      RateLimitConfig
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter собирает gin.Engine со всеми маршрутами приложения
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Logger.With().Str("component", "http").Logger()))

	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if cfg.RateLimit.Limiter != nil && cfg.RateLimit.Requests > 0 {
		router.Use(RateLimit(cfg.RateLimit.Limiter, cfg.RateLimit.Keys, cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.Logger))
	}

	router.Use(Identity(cfg.Tokens, cfg.UserService, cfg.Cookies, cfg.Logger))

	urlHandler := NewURLHandler(cfg.URLService, cfg.Logger)
	authHandler := NewAuthHandler(cfg.UserService, cfg.Tokens, cfg.Cookies, cfg.Logger)

	router.GET("/", authHandler.Index)
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	router.GET("/urls", urlHandler.ListURLs)
	router.GET("/urls.json", urlHandler.ListURLsJSON)
	router.POST("/urls", urlHandler.CreateURL)

	urls := router.Group("/urls/:id")
	{
		urls.GET("", urlHandler.GetURL)
		urls.PUT("", urlHandler.UpdateURL)
		urls.POST("", urlHandler.UpdateURL)
		urls.DELETE("", urlHandler.DeleteURL)
		urls.POST("/delete", urlHandler.DeleteURL)
	}

	router.GET("/u/:id", Visitor(cfg.Cookies, cfg.Logger), urlHandler.RedirectURL)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}

	// куки сессии не отправляются на wildcard origin
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
		return config
	}

	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}
