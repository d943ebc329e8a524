// Package middleware holds the fiber middleware of the REST API.
package middleware

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/auth"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/gofiber/fiber/v2"
)

// AuthRequired verifies the bearer access token and stores the user id in
// the httpx.LocalUserID local. Expired tokens are answered with code
// token_expired so clients know to refresh.
func AuthRequired(secretKey []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(common.AuthorizationHeaderName)
		if authHeader == "" {
			return httpx.Unauthorized(c, common.CodeUnauthorized, "Missing access token")
		}

		tokenString, ok := strings.CutPrefix(authHeader, common.BearerPrefix)
		if !ok || strings.TrimSpace(tokenString) == "" {
			return httpx.Unauthorized(c, common.CodeUnauthorized, "Invalid authorization format")
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimSpace(tokenString), secretKey)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return httpx.Unauthorized(c, common.CodeTokenExpired, "Access token expired")
			}
			return httpx.Unauthorized(c, common.CodeUnauthorized, "Invalid access token")
		}

		c.Locals(httpx.LocalUserID, userID)
		return c.Next()
	}
}
