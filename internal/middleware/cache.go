package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge               int
	Private              bool
	NoStore              bool
	MustRevalidate       bool
	StaleWhileRevalidate int
	Vary                 []string
}

// AvatarCacheConfig lets browsers and proxies keep avatar images for a day
func AvatarCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:               86400,
		StaleWhileRevalidate: 3600,
	}
}

// NoStoreConfig keeps per-user API responses out of every cache
func NoStoreConfig() CacheConfig {
	return CacheConfig{Private: true, NoStore: true, Vary: []string{"Authorization"}}
}

// Header renders the Cache-Control value
func (cfg CacheConfig) Header() string {
	directives := []string{"public"}
	if cfg.Private {
		directives[0] = "private"
	}
	if cfg.NoStore {
		return strings.Join(append(directives, "no-store"), ", ")
	}
	if cfg.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(cfg.MaxAge))
	}
	if cfg.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	if cfg.StaleWhileRevalidate > 0 {
		directives = append(directives, "stale-while-revalidate="+strconv.Itoa(cfg.StaleWhileRevalidate))
	}
	return strings.Join(directives, ", ")
}

// Cache adds cache control headers to GET and HEAD responses. Other methods
// are never cached.
func Cache(config CacheConfig) gin.HandlerFunc {
	value := config.Header()
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			c.Header("Cache-Control", value)
		default:
			c.Header("Cache-Control", "no-store")
		}
		if vary != "" {
			c.Header("Vary", vary)
		}
		c.Next()
	}
}
