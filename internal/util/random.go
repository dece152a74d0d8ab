package util

import (
	"fmt"
	"math/rand"

	"github.com/gosimple/slug"
	"github.com/lithammer/shortuuid/v4"
)

// GenerateRandomSlug builds a URL-safe slug from a display name with a short
// random suffix so repeated names stay unique.
func GenerateRandomSlug(name string) string {
	baseSlug := slug.Make(name)
	shortID := shortuuid.New()[:8]

	return fmt.Sprintf("%s-%s", baseSlug, shortID)
}

// NewUserID returns a compact random identifier for user rows.
func NewUserID() string {
	return shortuuid.New()
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a random alphanumeric string of the given length.
func RandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// RandomEmail returns a random email address, mostly useful in tests.
func RandomEmail() string {
	return fmt.Sprintf("%s@example.com", RandomString(10))
}
