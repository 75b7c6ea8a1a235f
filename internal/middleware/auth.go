package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
)

// Authenticate reads an optional bearer token. Requests without one continue
// anonymously; requests with an invalid one are rejected.
func Authenticate(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			Abort(c, apperrors.UnauthenticatedError("authorization header must be a bearer token"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected token")
			Abort(c, apperrors.UnauthenticatedError("invalid or expired token"))
			return
		}

		auth.SetUser(c, claims)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401. It must run after
// Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CurrentUser(c); !ok {
			Abort(c, apperrors.UnauthenticatedError("authentication required"))
			return
		}
		c.Next()
	}
}
