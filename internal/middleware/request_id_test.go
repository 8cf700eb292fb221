package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RequestID(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequestIDConservaUUIDDelCliente(t *testing.T) {
	id := uuid.NewString()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", id)
	requestIDRouter().ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestRequestIDReemplazaValoresNoUUID(t *testing.T) {
	r := requestIDRouter()
	for _, enviado := range []string{"", "abc", "../../etc/passwd"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if enviado != "" {
			req.Header.Set("X-Request-ID", enviado)
		}
		r.ServeHTTP(w, req)

		respuesta := w.Header().Get("X-Request-ID")
		require.NotEqual(t, enviado, respuesta)
		_, err := uuid.Parse(respuesta)
		assert.NoError(t, err)
	}
}
