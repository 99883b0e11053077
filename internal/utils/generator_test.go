package utils

import (
	"strings"
	"testing"
)

func TestGenerateShortCode(t *testing.T) {
	code, err := GenerateShortCode()
	if err != nil {
		t.Fatalf("GenerateShortCode() error = %v", err)
	}

	if len(code) != DefaultIDLength {
		t.Errorf("GenerateShortCode() length = %d, want %d", len(code), DefaultIDLength)
	}

	for _, char := range code {
		if !strings.ContainsRune(alphabet, char) {
			t.Errorf("GenerateShortCode() contains invalid character: %c", char)
		}
	}
}

func TestAlphabet(t *testing.T) {
	if len(alphabet) != 62 {
		t.Fatalf("alphabet length = %d, want 62", len(alphabet))
	}

	seen := make(map[rune]bool)
	for _, char := range alphabet {
		if seen[char] {
			t.Errorf("alphabet contains duplicate character: %c", char)
		}
		seen[char] = true

		isAlnum := (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')
		if !isAlnum {
			t.Errorf("alphabet contains non-alphanumeric character: %c", char)
		}
	}
}

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{"length 1", 1},
		{"length 4", 4},
		{"length 6", 6},
		{"length 8", 8},
		{"length 12", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := GenerateID(tt.length)
			if err != nil {
				t.Errorf("GenerateID(%d) error = %v", tt.length, err)
				return
			}

			if len(code) != tt.length {
				t.Errorf("GenerateID(%d) length = %d, want %d", tt.length, len(code), tt.length)
			}

			for _, char := range code {
				if !strings.ContainsRune(alphabet, char) {
					t.Errorf("GenerateID(%d) contains invalid character: %c", tt.length, char)
				}
			}
		})
	}
}

func TestGenerateIDInvalidLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		if _, err := GenerateID(length); err == nil {
			t.Errorf("GenerateID(%d) expected error, got nil", length)
		}
	}
}

func TestGenerateShortCodeUniqueness(t *testing.T) {
	generated := make(map[string]bool)
	iterations := 10000

	for i := 0; i < iterations; i++ {
		code, err := GenerateShortCode()
		if err != nil {
			t.Fatalf("GenerateShortCode() error = %v", err)
		}

		if generated[code] {
			t.Errorf("GenerateShortCode() generated duplicate: %s", code)
		}
		generated[code] = true
	}
}
