package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
)

// ContextUserID is the echo context key holding the authenticated user's id.
const ContextUserID = "uid"

type AuthMiddleware struct {
	verifier usecase.TokenVerifier
}

func NewAuthMiddleware(verifier usecase.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return errors.Unauthorized("Authorization header is required", nil)
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return errors.Unauthorized("Invalid authorization format", nil)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set(ContextUserID, uid)
		return next(c)
	}
}

// Optional sets the user id when a valid token is present and lets anonymous requests through.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
			if uid, err := m.verifier.VerifyToken(c.Request().Context(), token); err == nil {
				c.Set(ContextUserID, uid)
			}
		}
		return next(c)
	}
}

// AuthenticateQuery also accepts the token as ?token=, for browser websocket clients.
func (m *AuthMiddleware) AuthenticateQuery(next echo.HandlerFunc) echo.HandlerFunc {
	authenticated := m.Authenticate(next)
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			return authenticated(c)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set(ContextUserID, uid)
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	uid, _ := c.Get(ContextUserID).(string)
	return uid
}
