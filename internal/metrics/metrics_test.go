package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/ping", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))
}

func TestObserve_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveModeration("event", "approve", "ok")
	m.ObserveRealtime("notifications", "INSERT")
	m.ObserveBackup("ok")
}

func TestObserveModeration(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveModeration("event", "reject", "ok")
	m.ObserveModeration("event", "reject", "ok")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModerationActions.WithLabelValues("event", "reject", "ok")))
}
