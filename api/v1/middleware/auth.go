package middleware

import (
	"errors"
	"strings"

	"sitehost/internal/auth"
	"sitehost/internal/httpx"
	"sitehost/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthRequired validates the bearer credential and resolves it to a live
// user session. Handlers behind it can rely on "uid" being set; every query
// they issue is scoped to that user.
func AuthRequired(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.FailErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			c.Abort()
			return
		}

		// the token is only good while its server-side session lives
		uid, err := sessions.Resolve(c.Request.Context(), claims.ID)
		if errors.Is(err, session.ErrNotFound) {
			httpx.FailErr(c, httpx.ErrUnauthorized("session revoked or expired"))
			c.Abort()
			return
		}
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to resolve session", err))
			c.Abort()
			return
		}
		if uid != claims.UID {
			httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			c.Abort()
			return
		}

		c.Set("uid", claims.UID)
		c.Set("username", claims.Username)
		c.Set("sid", claims.ID)

		c.Next()
	}
}

// CurrentUser returns the authenticated user id set by AuthRequired
func CurrentUser(c *gin.Context) int {
	return c.GetInt("uid")
}
