package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescript/backend/internal/auth"
	"github.com/librescript/backend/internal/middleware"
	"github.com/librescript/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	id, ok := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "username": c.GetString(middleware.ContextUsernameKey)})
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, err := issuer.Issue(models.User{ID: 7, Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", middleware.RequireAuth(issuer), whoami)

	w := do(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"ok":true,"username":"alice"}`, w.Body.String())

	other, err := auth.NewIssuer("other", time.Hour).Issue(models.User{ID: 7})
	require.NoError(t, err)

	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer   ", "Bearer garbage", "Bearer " + other} {
		w := do(r, h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestOptionalAuth(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, err := issuer.Issue(models.User{ID: 3, Username: "bob"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", middleware.OptionalAuth(issuer), whoami)

	assert.JSONEq(t, `{"id":3,"ok":true,"username":"bob"}`, do(r, "Bearer "+token).Body.String())
	assert.JSONEq(t, `{"id":0,"ok":false,"username":""}`, do(r, "").Body.String())
	assert.JSONEq(t, `{"id":0,"ok":false,"username":""}`, do(r, "Bearer nope").Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", middleware.RateLimit(4), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// burst is half the per-minute budget
	assert.Equal(t, http.StatusNoContent, do(r, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "").Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.ContextRequestIDKey)) })

	w := do(r, "")
	id := w.Header().Get(middleware.RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
}
