package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(Config{ServiceName: "costmodel", Environment: "test"}, reg)
	require.NoError(t, err)

	m.RecordModelCreated()
	m.RecordModelCreated()
	m.RecordModelDeleted()
	m.RecordWorkUpdated(true)
	m.RecordWorkUpdated(false)
	m.RecordWorkUpdated(false)
	m.RecordRecalculation()
	m.ObserveStore(3, 42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.modelsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.worksUpdated.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.worksUpdated.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recalculations))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.storeModels))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.storeWorks))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordModelCreated()
		m.RecordWorkUpdated(true)
		m.ObserveStore(1, 1)
	})
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(Config{}, reg)
	require.NoError(t, err)
	_, err = New(Config{}, reg)
	assert.Error(t, err)
}

func TestHTTPMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	h, err := NewHTTPMetrics(Config{}, reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(h.GinMiddleware())
	r.GET("/api/models/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/models/7", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(h.requests.WithLabelValues(http.MethodGet, "/api/models/:id", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "costmodel_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
