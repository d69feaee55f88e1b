package middleware

import (
	"strings"

	"taskhub/internal/config"
	"taskhub/internal/core/domain"
	"taskhub/internal/pkg/jwt"
	"taskhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const callerKey = "caller"

// AuthMiddleware verifies the bearer token and stores the caller's
// identity and role in the request context. Ownership checks downstream
// read the caller from here; nothing re-resolves the user by name.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// Cookie first, then Authorization header
		accessToken = c.Cookies("access_token")
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			// Expired vs malformed vs bad signature all collapse to 401;
			// the distinction is only worth a different message.
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(callerKey, domain.Caller{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})

		return c.Next()
	}
}

// CallerFromCtx returns the authenticated caller stored by AuthMiddleware
func CallerFromCtx(c *fiber.Ctx) (domain.Caller, bool) {
	caller, ok := c.Locals(callerKey).(domain.Caller)
	return caller, ok
}

// AdminOnly allows only callers holding the ADMIN role. The role check
// happens before any resource is resolved.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFromCtx(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !caller.IsAdmin() {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}
