package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header carries the API key.
const Header = "X-API-Key"

// Config configures the auth middleware.
type Config struct {
	// ApiKey is the shared secret. Empty disables authentication.
	ApiKey string
	// Skip lets matching requests through without a key.
	Skip func(c *fiber.Ctx) bool
}

// New returns an API key middleware.
func New(cfg Config) fiber.Handler {
	key := []byte(cfg.ApiKey)
	return func(c *fiber.Ctx) error {
		if len(key) == 0 || (cfg.Skip != nil && cfg.Skip(c)) {
			return c.Next()
		}
		got := []byte(c.Get(Header))
		if subtle.ConstantTimeCompare(got, key) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing api key"})
		}
		return c.Next()
	}
}
