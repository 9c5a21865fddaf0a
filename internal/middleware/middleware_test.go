package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver map[string]string

func (s stubResolver) Resolve(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", apperrors.InvalidToken(errors.New("bad token"))
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(logger.Nop()), Validation(DefaultValidationConfig()))
	r.Use(mw...)
	return r
}

func perform(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperrors.Validation("prompt is required", nil), http.StatusBadRequest, "prompt is required"},
		{apperrors.NotFound("doctor", nil), http.StatusBadRequest, "doctor not found"},
		{apperrors.Unauthorized(nil), http.StatusUnauthorized, "invalid credentials"},
		{apperrors.Conflict("email already registered", nil), http.StatusConflict, "email already registered"},
		{apperrors.Upstream("image generation", errors.New("quota")), http.StatusInternalServerError, "image generation failed: quota"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		r := newEngine()
		r.GET("/x", func(c *gin.Context) { _ = c.Error(tc.err) })

		w := perform(r, http.MethodGet, "/x", "", nil)
		assert.Equal(t, tc.status, w.Code, tc.msg)
		assert.Equal(t, tc.msg, errorMessage(t, w))
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := perform(r, http.MethodGet, "/x", "", map[string]string{HeaderXRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = perform(r, http.MethodGet, "/x", "", map[string]string{HeaderXRequestID: strings.Repeat("x", 100)})
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthMiddleware(stubResolver{"good": "user-1"})
	r := newEngine()
	r.GET("/me", auth.Authenticate(), func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })

	w := perform(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	for _, header := range []string{"", "Bearer", "Basic good", "Bearer bad"} {
		w = perform(r, http.MethodGet, "/me", "", map[string]string{"Authorization": header})
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := NewAuthMiddleware(stubResolver{"good": "user-1"})
	r := newEngine()
	r.GET("/chat", auth.Optional(), func(c *gin.Context) { c.String(http.StatusOK, "user="+UserID(c)) })

	w := perform(r, http.MethodGet, "/chat", "", nil)
	assert.Equal(t, "user=", w.Body.String())

	w = perform(r, http.MethodGet, "/chat", "", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, "user=user-1", w.Body.String())

	w = perform(r, http.MethodGet, "/chat", "", map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Theme    string `json:"theme" binding:"omitempty,oneof=light dark"`
}

func TestValidationNamesTheField(t *testing.T) {
	r := newEngine()
	r.POST("/signup", func(c *gin.Context) {
		var req signup
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		c.Status(http.StatusCreated)
	})

	cases := []struct{ body, want string }{
		{`{"password":"password123"}`, "email is required"},
		{`{"email":"nope","password":"password123"}`, "email must be a valid email address"},
		{`{"email":"a@b.co","password":"short"}`, "password must be at least 8"},
		{`{"email":"a@b.co","password":"password123","theme":"x"}`, "theme must be one of: light dark"},
		{`{"email":`, "invalid request body"},
	}
	for _, tc := range cases {
		w := perform(r, http.MethodPost, "/signup", tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		assert.Equal(t, tc.want, errorMessage(t, w), tc.body)
	}

	w := perform(r, http.MethodPost, "/signup", `{"email":"a@b.co","password":"password123"}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", errorMessage(t, w))
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	r := newEngine(rl.RateLimit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestSizeLimit(t *testing.T) {
	r := newEngine(SizeLimit(SizeLimitConfig{MaxBodySize: 16, MaxHeaderSize: 1 << 14}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodPost, "/x", `{"a":1}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodPost, "/x", strings.Repeat("a", 64), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCacheHeaders(t *testing.T) {
	assert.Equal(t, "public, max-age=86400, stale-while-revalidate=3600", AvatarCacheConfig().Header())
	assert.Equal(t, "private, no-store", NoStoreConfig().Header())

	r := newEngine(Cache(AvatarCacheConfig()))
	r.GET("/a", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/a", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "public, max-age=86400, stale-while-revalidate=3600", perform(r, http.MethodGet, "/a", "", nil).Header().Get("Cache-Control"))
	assert.Equal(t, "no-store", perform(r, http.MethodPost, "/a", "", nil).Header().Get("Cache-Control"))
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "includeSubDomains")
}

func TestLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: &buf, JSON: true})

	r := gin.New()
	r.Use(RequestID(), Logger(log, LoggerConfig{RedactPaths: []string{"/api/login"}, LogBodies: true}))
	r.POST("/api/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/chat", func(c *gin.Context) {
		var body map[string]string
		require.NoError(t, c.ShouldBindJSON(&body))
		c.String(http.StatusOK, body["prompt"])
	})

	perform(r, http.MethodPost, "/api/login", `{"password":"hunter22"}`, nil)
	w := perform(r, http.MethodPost, "/api/chat", `{"prompt":"hello"}`, nil)

	assert.Equal(t, "hello", w.Body.String())
	assert.NotContains(t, buf.String(), "hunter22")
	assert.Contains(t, buf.String(), "/api/login")
	assert.Contains(t, buf.String(), "prompt")
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New("popdoc")
	r := gin.New()
	r.Use(Metrics(m), ErrorHandler(logger.Nop()))
	r.GET("/api/doctors/:id", func(c *gin.Context) { _ = c.Error(apperrors.NotFound("doctor", nil)) })

	perform(r, http.MethodGet, "/api/doctors/nobody", "", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/api/doctors/:id", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorTotal.WithLabelValues("GET", "/api/doctors/:id", "not_found")))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := newEngine(Timeout(5 * time.Second))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/x", "", nil).Code)
}
