package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ping", mw, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.RemoteAddr = ip + ":51234"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestLoginRateLimiterBloqueaTrasElLimite(t *testing.T) {
	r := limiterRouter(LoginRateLimiter())
	ip := "10.9.8.7"

	for i := 0; i < loginMaxPorMinuto; i++ {
		require.Equal(t, http.StatusNoContent, hit(r, ip), "intento %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(r, ip))

	// Another IP is not affected.
	assert.Equal(t, http.StatusNoContent, hit(r, "10.9.8.6"))
}

func TestRateLimiterVentanaExpira(t *testing.T) {
	r := limiterRouter(RateLimiter(2, 30*time.Millisecond))
	ip := "10.1.2.3"

	assert.Equal(t, http.StatusNoContent, hit(r, ip))
	assert.Equal(t, http.StatusNoContent, hit(r, ip))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, ip))

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, http.StatusNoContent, hit(r, ip))
}

func TestVentanasPurgar(t *testing.T) {
	v := newVentanas("test")
	v.permitir("10.0.0.1", 5, 10*time.Millisecond)
	v.permitir("10.0.0.2", 5, time.Hour)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, v.purgar(time.Now()))
	assert.Len(t, v.entries, 1)
}
