package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/model"
)

type UserService interface {
	UserLookup
	Register(ctx context.Context, req *model.CredentialsRequest) (*model.UserResponse, error)
	Login(ctx context.Context, req *model.CredentialsRequest) (*model.UserResponse, error)
}

type AuthHandler struct {
	userService UserService
	tokens      TokenManager
	cookies     CookieConfig
	logger      zerolog.Logger
}

func NewAuthHandler(userService UserService, tokens TokenManager, cookies CookieConfig, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		cookies:     cookies,
		logger:      logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Index отправляет авторизованного пользователя к его ссылкам
func (h *AuthHandler) Index(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/urls")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Please log in or register",
		"login":    "/login",
		"register": "/register",
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c)
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	clearCookie(c, h.cookies.Session, h.cookies.Secure)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) startSession(c *gin.Context, userID string) bool {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		handleError(c, h.logger, err)
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookies.Session, token, int(h.tokens.TTL().Seconds()), "/", "", h.cookies.Secure, true)
	return true
}
