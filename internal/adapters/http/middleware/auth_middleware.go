package middleware

import (
	"strings"

	"salescrm/internal/config"
	"salescrm/internal/pkg/jwt"
	"salescrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware. On success the claims
// land in Locals: userID, email, role, and the full authority token set.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)
		c.Locals("authorities", claims.Authorities)

		return c.Next()
	}
}

// RequireAuthority authorizes by capability tokens: the request passes when
// the claims carry ANY of the given tokens. Role tokens ("ROLE_ADMIN") and
// permission codes ("leads.convert") are checked the same way, so a granted
// permission can open an endpoint normally gated by role.
func RequireAuthority(tokens ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorities, ok := c.Locals("authorities").([]string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, required := range tokens {
			for _, held := range authorities {
				if held == required {
					return c.Next()
				}
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RequireAuthority("ROLE_ADMIN")
}

// ManagerOrAdmin allows MANAGER or ADMIN roles
func ManagerOrAdmin() fiber.Handler {
	return RequireAuthority("ROLE_MANAGER", "ROLE_ADMIN")
}

// SalesStaff allows the roles that work leads and opportunities
func SalesStaff() fiber.Handler {
	return RequireAuthority("ROLE_SALES_REP", "ROLE_MANAGER", "ROLE_ADMIN")
}

// OptionalAuth doesn't require auth but sets user info if a token is present
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		accessToken = c.Cookies("access_token")

		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken != "" {
			claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
			if err == nil {
				c.Locals("userID", claims.UserID)
				c.Locals("email", claims.Email)
				c.Locals("role", claims.Role)
				c.Locals("authorities", claims.Authorities)
			}
		}

		return c.Next()
	}
}
