package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
)

const (
	maxURLLength      = 2048
	maxEmailLength    = 254
	maxPasswordLength = 72 // предел bcrypt
)

var validate = validator.New()

func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return apperrors.NewValidationError("long_url", "URL cannot be empty")
	}

	if len(rawURL) > maxURLLength {
		return apperrors.NewValidationError("long_url", "URL is too long (max 2048 characters)")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.NewValidationError("long_url", fmt.Sprintf("invalid URL format: %v", err))
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return apperrors.NewValidationError("long_url", "URL must start with http:// or https://")
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("long_url", "URL must contain a valid host")
	}

	return nil
}

// ValidateCredentials проверяет email и пароль при регистрации
func ValidateCredentials(email, password string) error {
	if email == "" {
		return apperrors.NewValidationError("email", "email cannot be empty")
	}

	if len(email) > maxEmailLength {
		return apperrors.NewValidationError("email", "email is too long")
	}

	if err := validate.Var(email, "email"); err != nil {
		return apperrors.NewValidationError("email", "email has an invalid format")
	}

	if password == "" {
		return apperrors.NewValidationError("password", "password cannot be empty")
	}

	if len(password) > maxPasswordLength {
		return apperrors.NewValidationError("password", "password is too long (max 72 bytes)")
	}

	return nil
}

func SanitizeInput(input string) string {
	// Удаляем управляющие символы и обрезаем пробелы
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(result)
}
