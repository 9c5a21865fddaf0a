package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler turns the last error attached with c.Error into a JSON reply.
// Server errors are logged with their cause; clients only see the message.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	zl := log.Zerolog()

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := apperrors.As(c.Errors.Last().Err)
		status := appErr.StatusCode()

		event := zl.Warn()
		if status >= http.StatusInternalServerError {
			event = zl.Error()
		}
		event.
			Err(appErr.Err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg(appErr.Message)

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: appErr.Message})
	}
}
