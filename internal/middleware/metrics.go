package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

// Metrics records request counts and latency per route template
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		m.RequestTotal.WithLabelValues(method, path, status).Inc()
		m.RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		if len(c.Errors) > 0 {
			m.ErrorTotal.WithLabelValues(method, path, kindName(apperrors.As(c.Errors.Last().Err).Kind)).Inc()
		}
	}
}

func kindName(k apperrors.Kind) string {
	switch k {
	case apperrors.KindValidation:
		return "validation"
	case apperrors.KindAuth:
		return "auth"
	case apperrors.KindNotFound:
		return "not_found"
	case apperrors.KindConflict:
		return "conflict"
	case apperrors.KindUpstream:
		return "upstream"
	case apperrors.KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}
