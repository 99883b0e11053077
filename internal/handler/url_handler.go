package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/model"
)

type URLService interface {
	CreateShortURL(ctx context.Context, ownerID string, req *model.CreateURLRequest) (*model.URLResponse, error)
	ListURLs(ctx context.Context, userID string) ([]model.URL, error)
	GetDetails(ctx context.Context, userID, shortCode string) (*model.URLDetails, error)
	UpdateURL(ctx context.Context, userID, shortCode string, req *model.UpdateURLRequest) (*model.URLResponse, error)
	DeleteURL(ctx context.Context, userID, shortCode string) error
	Resolve(ctx context.Context, shortCode string) (string, error)
	RecordVisit(ctx context.Context, shortCode, visitorID string) error
}

type URLHandler struct {
	urlService URLService
	logger     zerolog.Logger
}

func NewURLHandler(urlService URLService, logger zerolog.Logger) *URLHandler {
	return &URLHandler{
		urlService: urlService,
		logger:     logger.With().Str("component", "url_handler").Logger(),
	}
}

func (h *URLHandler) ListURLs(c *gin.Context) {
	urls, err := h.urlService.ListURLs(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": currentUser(c),
		"urls": urls,
	})
}

// ListURLsJSON отдает ссылки пользователя в виде map код -> запись
func (h *URLHandler) ListURLsJSON(c *gin.Context) {
	urls, err := h.urlService.ListURLs(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, model.NewURLMap(urls))
}

func (h *URLHandler) CreateURL(c *gin.Context) {
	var req model.CreateURLRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c)
		return
	}

	// Создаем URL
	response, err := h.urlService.CreateShortURL(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.Header("Location", "/urls/"+response.ShortCode)
	c.JSON(http.StatusCreated, response)
}

func (h *URLHandler) GetURL(c *gin.Context) {
	details, err := h.urlService.GetDetails(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *URLHandler) UpdateURL(c *gin.Context) {
	var req model.UpdateURLRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c)
		return
	}

	response, err := h.urlService.UpdateURL(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *URLHandler) DeleteURL(c *gin.Context) {
	if err := h.urlService.DeleteURL(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *URLHandler) RedirectURL(c *gin.Context) {
	shortCode := c.Param("id")

	longURL, err := h.urlService.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	// Переход записывается до ответа; сбой журнала не ломает редирект
	if visitorID := c.GetString(visitorKey); visitorID != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		if err := h.urlService.RecordVisit(ctx, shortCode, visitorID); err != nil {
			h.logger.Warn().Err(err).Str("short_code", shortCode).Msg("failed to record visit")
		}
		cancel()
	}

	// Выполняем редирект (HTTP 302 - Found)
	c.Redirect(http.StatusFound, longURL)
}
