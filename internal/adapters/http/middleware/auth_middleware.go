package middleware

import (
	"errors"
	"strings"

	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/pkg/jwt"
	"lendsqr-admin/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalAdminID = "adminID"
	LocalEmail   = "email"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := TokenFromRequest(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(LocalAdminID, claims.AdminID)
		c.Locals(LocalEmail, claims.Email)

		return c.Next()
	}
}

// TokenFromRequest reads the access token from the cookie, falling back to
// the Authorization header
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AdminID returns the authenticated operator's id
func AdminID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalAdminID).(uint)
	return id, ok
}
