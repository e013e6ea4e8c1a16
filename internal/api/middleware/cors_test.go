package middleware_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hostdesk/livechat-service/internal/api/middleware"
	"github.com/hostdesk/livechat-service/internal/testutil"
)

func newCORSRouter(origins []string) *gin.Engine {
	cfg := middleware.DefaultCORSConfig(origins)
	router := testutil.SetupTestRouter()
	router.Use(middleware.NewCORSMiddleware(cfg))
	middleware.SetupCORSRoutes(router, cfg)
	router.GET("/settings/public", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCORS_AllowedOrigin(t *testing.T) {
	router := newCORSRouter([]string{"https://shop.example"})

	w := testutil.PerformRequest(router, http.MethodGet, "/settings/public", nil, map[string]string{"Origin": "https://shop.example"})

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Last-Event-ID")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORS_UnknownOrigin(t *testing.T) {
	router := newCORSRouter([]string{"https://shop.example"})

	w := testutil.PerformRequest(router, http.MethodGet, "/settings/public", nil, map[string]string{"Origin": "https://evil.example"})

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	router := newCORSRouter(nil)

	w := testutil.PerformRequest(router, http.MethodOptions, "/api/v1/livechat/widgets/w1/messages", nil, map[string]string{"Origin": "http://localhost:5173"})

	testutil.AssertStatusCode(t, http.StatusNoContent, w)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
