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

func traceRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("trace_id"))
	})
	return r
}

func TestTraceIDMiddlewareGeneratesID(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)

	traceRouter().ServeHTTP(w, req)

	header := w.Header().Get("X-Trace-ID")
	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, w.Body.String())
}

func TestTraceIDMiddlewareReusesIncomingID(t *testing.T) {
	incoming := uuid.New().String()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", incoming)

	traceRouter().ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get("X-Trace-ID"))
	assert.Equal(t, incoming, w.Body.String())
}

func TestTraceIDMiddlewareRejectsMalformedIncomingID(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "not-a-uuid")

	traceRouter().ServeHTTP(w, req)

	header := w.Header().Get("X-Trace-ID")
	assert.NotEqual(t, "not-a-uuid", header)
	_, err := uuid.Parse(header)
	require.NoError(t, err)
}
