package middleware

import (
	"strings"

	"catalog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalIsAdmin  = "is_admin"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.WithError(err).WithField("path", c.Path()).Info("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's claims when a valid bearer token is
// sent and lets every request through. Anonymous and invalid callers are
// treated as standard users downstream.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if claims, err := authService.ValidateToken(tokenString); err == nil {
				storeClaims(c, claims)
			}
		}
		return c.Next()
	}
}

// AdminRequired rejects callers whose token does not carry the admin flag.
// It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// IsAdmin reports whether the authenticated caller is an admin.
func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals(LocalIsAdmin).(bool)
	return isAdmin
}

func bearerToken(header string) (string, bool) {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func storeClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	isAdmin, _ := claims["is_admin"].(bool)
	c.Locals(LocalUserID, claims["user_id"])
	c.Locals(LocalUsername, claims["username"])
	c.Locals(LocalIsAdmin, isAdmin)
}
