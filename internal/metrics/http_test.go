package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "test_app"))
	router.GET("/v1/credentials/:kind", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"kind": c.Param("kind")})
	})
	router.PUT("/v1/credentials/:kind", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, path := range []string{"/v1/credentials/video-provider", "/v1/credentials/assistant-provider"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/v1/credentials/video-provider", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	output := scrape(t, provider)

	assertBizMetricLine(
		t,
		output,
		`test_app_http_requests_total`,
		`method="GET".*path="/v1/credentials/:kind".*status_code="200"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`test_app_http_requests_total`,
		`method="PUT".*path="/v1/credentials/:kind".*status_code="204"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`test_app_http_requests_total`,
		`method="GET".*path="unknown".*status_code="404"`,
		`1`,
	)
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "RoutePattern", input: "/v1/credentials/:kind", expected: "/v1/credentials/:kind"},
		{name: "EmptyPath", input: "", expected: "unknown"},
		{name: "RootPath", input: "/", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}
