package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/metrics"
)

// Errors renders the last error a handler attached with c.Error as a
// structured JSON response.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		Abort(c, c.Errors.Last().Err)
	}
}

// Abort writes err as a structured response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	structuredErr := apperrors.AsStructuredError(err)
	metrics.HTTPErrorsTotal.WithLabelValues(string(structuredErr.Type)).Inc()
	logError(c, structuredErr)

	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(structuredErr.HTTPStatus(), structuredErr.ToResponse())
}

func logError(c *gin.Context, err *apperrors.Error) {
	l := zerolog.Ctx(c.Request.Context())

	var ev *zerolog.Event
	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound, apperrors.TypeUnauthenticated:
		ev = l.Info()
	case apperrors.TypePermission, apperrors.TypeConflict:
		ev = l.Warn()
	default:
		ev = l.Error().AnErr("cause", err.Cause)
	}

	ev = ev.Str("error_type", string(err.Type)).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Int("status", err.HTTPStatus())
	for k, v := range err.Context {
		ev = ev.Interface(k, v)
	}
	if userID, ok := auth.CurrentUser(c); ok {
		ev = ev.Uint("user_id", userID)
	}
	ev.Msg(err.Message)
}
