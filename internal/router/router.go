package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authh "github.com/jwalitptl/popdoc-api/internal/handler/auth"
	chath "github.com/jwalitptl/popdoc-api/internal/handler/chat"
	doctorh "github.com/jwalitptl/popdoc-api/internal/handler/doctor"
	"github.com/jwalitptl/popdoc-api/internal/handler/health"
	imageh "github.com/jwalitptl/popdoc-api/internal/handler/image"
	profileh "github.com/jwalitptl/popdoc-api/internal/handler/profile"
	"github.com/jwalitptl/popdoc-api/internal/handler/prometheus"
	"github.com/jwalitptl/popdoc-api/internal/middleware"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

// Handlers groups the route handlers mounted by the router
type Handlers struct {
	Auth    *authh.Handler
	Chat    *chath.Handler
	Image   *imageh.Handler
	Doctor  *doctorh.Handler
	Profile *profileh.Handler
	Health  *health.Handler
	Metrics *prometheus.Handler
}

type RouterConfig struct {
	// Mode is the gin mode; empty means release
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxBodySize    int64
	AvatarDir      string
	LogBodies      bool
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, h Handlers, m *metrics.Metrics, log *logger.Logger, config RouterConfig) *Router {
	mode := config.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	engine := gin.New()

	loggerConfig := middleware.DefaultLoggerConfig()
	loggerConfig.LogBodies = config.LogBodies

	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log, loggerConfig),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.ErrorHandler(log),
		middleware.Validation(middleware.DefaultValidationConfig()),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		cors.New(corsConfig(config.CORSOrigins)),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: h,
		config:   config,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		ExposeHeaders: []string{middleware.HeaderXRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (r *Router) Setup() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine)
	}
	if r.handlers.Metrics != nil {
		r.handlers.Metrics.RegisterRoutes(r.engine)
	}

	if r.config.AvatarDir != "" {
		avatars := r.engine.Group("/avatars", middleware.Cache(middleware.AvatarCacheConfig()))
		avatars.Static("/", r.config.AvatarDir)
	}

	api := r.engine.Group("/api")
	api.Use(
		middleware.Timeout(r.config.RequestTimeout),
		middleware.SizeLimit(r.sizeLimitConfig()),
		middleware.Cache(middleware.NoStoreConfig()),
	)
	if r.config.RateLimit > 0 {
		api.Use(middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		}).RateLimit())
	}

	r.handlers.Auth.RegisterRoutes(api)
	r.handlers.Doctor.RegisterRoutes(api)
	r.handlers.Chat.RegisterRoutes(api, r.auth.Optional())
	r.handlers.Image.RegisterRoutes(api)
	r.handlers.Profile.RegisterRoutes(api, r.auth.Authenticate())
}

func (r *Router) sizeLimitConfig() middleware.SizeLimitConfig {
	cfg := middleware.DefaultSizeLimitConfig()
	if r.config.MaxBodySize > 0 {
		cfg.MaxBodySize = r.config.MaxBodySize
	}
	return cfg
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
