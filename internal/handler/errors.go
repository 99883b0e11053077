package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
)

// handleError обрабатывает ошибки и возвращает соответствующие HTTP коды
func handleError(c *gin.Context, logger zerolog.Logger, err error) {
	// Проверяем ValidationError
	if validationErr := apperrors.GetValidationError(err); validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
		return
	}

	if domainErr := apperrors.GetError(err); domainErr != nil {
		status, code := statusFor(domainErr.Kind)
		c.JSON(status, gin.H{
			"error":   code,
			"message": domainErr.Message,
		})
		return
	}

	// Проверяем BusinessError
	if businessErr := apperrors.GetBusinessError(err); businessErr != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrResourceExhausted) {
			status = http.StatusServiceUnavailable
		}

		logger.Error().Err(err).Str("code", businessErr.Code).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{
			"error":   "business_error",
			"message": businessErr.Message,
			"code":    businessErr.Code,
		})
		return
	}

	// Неизвестная ошибка
	logger.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An unexpected error occurred",
	})
}

func statusFor(kind error) (int, string) {
	switch {
	case errors.Is(kind, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(kind, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(kind, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(kind, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(kind, apperrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(kind, apperrors.ErrResourceExhausted):
		return http.StatusServiceUnavailable, "resource_exhausted"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func bindError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "Invalid request body",
	})
}
