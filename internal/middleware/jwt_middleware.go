package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"myflix/internal/models"
)

const (
	identityKey = "identity"
	usernameKey = "username"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*models.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(verifier TokenVerifier, logger *zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		identity, err := verifier.VerifyToken(parts[1])
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(identityKey, identity)
		c.Locals(usernameKey, identity.Username)

		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "unauthorized",
		"message": message,
	})
}
