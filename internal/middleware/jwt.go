package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/utils"
)

// ContextUserID is the echo context key under which the authenticated
// principal's user id is stored. When the key is absent the request is
// anonymous; handlers never see a half-validated principal.
const ContextUserID = "user_id"

// JWTAuth validates a Bearer access token and stores the subject user
// id in the request context. Requests without a valid token are
// rejected with 401. Wrap every route that requires a principal.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ContextUserID, uid)
			return next(c)
		}
	}
}

// OptionalJWTAuth resolves a principal when a valid Bearer token is
// present and leaves the request anonymous otherwise. It never rejects:
// a missing or invalid token simply means no user id in context. Used
// on public reads whose behavior differs for authenticated viewers
// (listing view counting).
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				if uid, err := utils.ParseAccessToken(secret, raw); err == nil {
					c.Set(ContextUserID, uid)
				}
			}
			return next(c)
		}
	}
}
