package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of them,
// so callers can branch with errors.Is without knowing the concrete error.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Error is a concrete domain error tagged with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

var (
	ErrURLNotFound        = New(ErrNotFound, "URL not found")
	ErrUserNotFound       = New(ErrNotFound, "user not found")
	ErrShortCodeExists    = New(ErrConflict, "short code already exists")
	ErrUserIDExists       = New(ErrConflict, "user ID already exists")
	ErrEmailTaken         = New(ErrConflict, "email is already registered")
	ErrInvalidCredentials = New(ErrUnauthorized, "invalid email or password")
	ErrOwnerRequired      = New(ErrUnauthorized, "you must be logged in")
	ErrNotOwner           = New(ErrForbidden, "URL belongs to another user")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

type BusinessError struct {
	Code    string
	Message string
	Cause   error
}

func (e *BusinessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Cause
}

func NewBusinessError(code, message string, cause error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

var (
	ErrShortCodeGeneration = NewBusinessError("SHORT_CODE_GENERATION", "failed to generate unique short code", ErrResourceExhausted)
	ErrIDGeneration        = NewBusinessError("ID_GENERATION", "failed to generate unique user ID", ErrResourceExhausted)
)

// IsValidationError проверяет является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsBusinessError проверяет является ли ошибка бизнес-ошибкой
func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

func GetValidationError(err error) *ValidationError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return nil
}

// GetBusinessError извлекает BusinessError из ошибки
func GetBusinessError(err error) *BusinessError {
	var businessErr *BusinessError
	if errors.As(err, &businessErr) {
		return businessErr
	}
	return nil
}

// GetError извлекает доменную ошибку
func GetError(err error) *Error {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}
