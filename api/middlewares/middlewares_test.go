package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.Any("/x", handlers...)
	return router
}

func do(router http.Handler, method, origin, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAllowOrigins(t *testing.T) {
	router := setupRouter(AllowOrigins([]string{"https://erp.example.com", "*.corp.example"}))

	w := do(router, http.MethodGet, "https://erp.example.com", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://erp.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(router, http.MethodGet, "https://a.corp.example", "")
	assert.Equal(t, "https://a.corp.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(router, http.MethodGet, "https://evil.example.org", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(router, http.MethodOptions, "https://erp.example.com", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOnlyAllowLocal(t *testing.T) {
	router := setupRouter(OnlyAllowLocal)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "", "127.0.0.1:4000").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "", "[::1]:4000").Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "", "10.1.2.3:4000").Code)
}

func TestRateLimit(t *testing.T) {
	router := setupRouter(RateLimit(6)) // burst of 3

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "", "10.0.0.1:1000").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodPost, "", "10.0.0.1:1000").Code)
	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "", "10.0.0.2:1000").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	router := setupRouter(RateLimit(0))
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "", "10.0.0.1:1000").Code)
	}
}
