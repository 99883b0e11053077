package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultIDLength = 6
	alphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateShortCode возвращает случайный идентификатор длины по умолчанию.
// Уникальность не гарантируется, проверка коллизий на вызывающей стороне.
func GenerateShortCode() (string, error) {
	return GenerateID(DefaultIDLength)
}

// GenerateID draws length characters uniformly, with replacement, from [A-Za-z0-9].
func GenerateID(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid ID length %d", length)
	}

	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}

	return id, nil
}
