package utils

import (
	"strings"
	"testing"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "valid http URL",
			url:     "http://www.lighthouselabs.ca",
			wantErr: false,
		},
		{
			name:    "valid https URL",
			url:     "https://google.com/search?q=test",
			wantErr: false,
		},
		{
			name:    "valid URL with path and query",
			url:     "https://api.github.com/repos/user/repo?sort=updated",
			wantErr: false,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "URL without scheme",
			url:     "example.com",
			wantErr: true,
		},
		{
			name:    "URL with invalid scheme",
			url:     "ftp://example.com",
			wantErr: true,
		},
		{
			name:    "URL without host",
			url:     "https://",
			wantErr: true,
		},
		{
			name:    "invalid URL format",
			url:     "not-a-url",
			wantErr: true,
		},
		{
			name:    "URL too long",
			url:     "https://example.com/" + strings.Repeat("a", 2100),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("ValidateURL() unexpected error = %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateURL() expected error, got nil")
				return
			}
			if !apperrors.IsValidationError(err) {
				t.Errorf("ValidateURL() expected validation error, got %T", err)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantField string
	}{
		{name: "valid", email: "user@example.com", password: "purple-monkey-dinosaur"},
		{name: "empty email", email: "", password: "secret", wantField: "email"},
		{name: "malformed email", email: "user-at-example", password: "secret", wantField: "email"},
		{name: "empty password", email: "user@example.com", password: "", wantField: "password"},
		{name: "password too long", email: "user@example.com", password: strings.Repeat("p", 73), wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.email, tt.password)

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateCredentials() unexpected error = %v", err)
				}
				return
			}

			validationErr := apperrors.GetValidationError(err)
			if validationErr == nil {
				t.Fatalf("ValidateCredentials() expected validation error, got %v", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("ValidateCredentials() field = %q, want %q", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "https://example.com",
			expected: "https://example.com",
		},
		{
			name:     "string with spaces",
			input:    "  https://example.com  ",
			expected: "https://example.com",
		},
		{
			name:     "string with control characters",
			input:    "https://example.com\x00\x01\x02",
			expected: "https://example.com",
		},
		{
			name:     "string with tabs and newlines",
			input:    "https://example.com\t\n\r",
			expected: "https://example.com",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only spaces",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeInput(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeInput() = %q, want %q", result, tt.expected)
			}
		})
	}
}
