package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig represents security headers configuration
type SecurityConfig struct {
	HSTS                  bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	CSPDirectives         []string
}

// DefaultSecurityConfig suits a JSON API that also serves avatar images
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:                  true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		CSPDirectives: []string{
			"default-src 'none'",
			"img-src 'self' data:",
			"frame-ancestors 'none'",
		},
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := map[string]string{
		"X-Frame-Options":        config.FrameOptions,
		"X-Content-Type-Options": config.ContentTypeOptions,
		"Referrer-Policy":        config.ReferrerPolicy,
	}
	if config.HSTS {
		value := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			value += "; includeSubDomains"
		}
		headers["Strict-Transport-Security"] = value
	}
	if len(config.CSPDirectives) > 0 {
		headers["Content-Security-Policy"] = strings.Join(config.CSPDirectives, "; ")
	}

	return func(c *gin.Context) {
		for k, v := range headers {
			if v != "" {
				c.Header(k, v)
			}
		}
		c.Next()
	}
}
