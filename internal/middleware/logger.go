package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/popdoc-api/pkg/logger"
)

const maxLoggedBody = 1 << 10

// LoggerConfig controls request logging
type LoggerConfig struct {
	// RedactPaths never have their request bodies logged
	RedactPaths []string
	// LogBodies logs non-GET request bodies at debug level
	LogBodies bool
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		RedactPaths: []string{"/api/login", "/api/register"},
	}
}

// Logger returns a middleware that logs HTTP requests
func Logger(log *logger.Logger, config LoggerConfig) gin.HandlerFunc {
	redact := make(map[string]struct{}, len(config.RedactPaths))
	for _, p := range config.RedactPaths {
		redact[p] = struct{}{}
	}
	zl := log.Zerolog()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		var requestBody []byte
		if _, skip := redact[path]; config.LogBodies && !skip && c.Request.Method != http.MethodGet && c.Request.Body != nil {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
			c.Request.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(requestBody), c.Request.Body), c.Request.Body}
		}

		c.Next()

		status := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		event := zl.Info()
		msg := "Request processed"
		switch {
		case status >= http.StatusInternalServerError:
			event, msg = zl.Error(), "Server error"
		case status >= http.StatusBadRequest:
			event, msg = zl.Warn(), "Client error"
		}

		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())
		if len(requestBody) > 0 {
			event.Bytes("request", requestBody)
		}
		event.Msg(msg)
	}
}
