package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/cache"
	"github.com/Kosench/tinyapp/internal/model"
	"github.com/Kosench/tinyapp/internal/utils"
)

const (
	userKey    = "user"
	visitorKey = "visitorID"

	visitorIDLength = 16
	visitorMaxAge   = 365 * 24 * 60 * 60
)

type TokenManager interface {
	Issue(userID string) (string, error)
	Parse(token string) (string, error)
	TTL() time.Duration
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*model.UserResponse, error)
}

type CookieConfig struct {
	Session string
	Visitor string
	Secure  bool
}

// Identity кладет в контекст пользователя из сессионной куки.
// Невалидный токен или удаленный пользователь означают анонимный запрос.
func Identity(tokens TokenManager, users UserLookup, cookies CookieConfig, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookies.Session)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			logger.Debug().Err(err).Msg("invalid session token")
			clearCookie(c, cookies.Session, cookies.Secure)
			c.Next()
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			logger.Debug().Err(err).Str("user_id", userID).Msg("session user not found")
			clearCookie(c, cookies.Session, cookies.Secure)
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// Visitor определяет посетителя для аналитики: ID пользователя или случайная кука
func Visitor(cookies CookieConfig, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := currentUser(c); user != nil {
			c.Set(visitorKey, user.ID)
			c.Next()
			return
		}

		visitorID, err := c.Cookie(cookies.Visitor)
		if err != nil || visitorID == "" {
			visitorID, err = utils.GenerateID(visitorIDLength)
			if err != nil {
				logger.Error().Err(err).Msg("failed to generate visitor ID")
				c.Next()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookies.Visitor, visitorID, visitorMaxAge, "/", "", cookies.Secure, true)
		}

		c.Set(visitorKey, visitorID)
		c.Next()
	}
}

func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration_ms", duration).
			Int("bytes", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Msg("request completed")
	}
}

// RateLimit - фиксированное окно на IP; ошибка лимитера пропускает запрос
func RateLimit(limiter cache.RateLimiter, keys *cache.KeyBuilder, maxRequests int, window time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keys.RateLimit(c.ClientIP())

		count, err := limiter.IncrementRateLimit(c.Request.Context(), key, window)
		if err != nil {
			logger.Warn().Err(err).Msg("rate limit check failed")
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

func currentUser(c *gin.Context) *model.UserResponse {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*model.UserResponse)
	return user
}

func currentUserID(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return ""
}

func clearCookie(c *gin.Context, name string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", secure, true)
}
