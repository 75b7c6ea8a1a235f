package auth

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
)

// Context keys set by the authentication middleware.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// CurrentUser reports the authenticated user of the request, if any.
func CurrentUser(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// RequireAuthenticated returns the current user. Anonymous callers get
// PermissionDenied, the same answer the forum core gives them.
func RequireAuthenticated(c *gin.Context) (uint, error) {
	id, ok := CurrentUser(c)
	if !ok {
		return 0, apperrors.PermissionDenied("authentication required")
	}
	return id, nil
}

// SetUser attaches claims to the request.
func SetUser(c *gin.Context, claims *Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
}
