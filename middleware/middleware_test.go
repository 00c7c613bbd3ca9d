package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"luxstay/models"
	"luxstay/services/auth"
	"luxstay/services/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stalledStore struct{ session.Store }

func (stalledStore) Load(ctx context.Context) (models.Session, error) {
	<-ctx.Done()
	return models.Session{}, ctx.Err()
}

func gatedRouter(store session.Store, timeout time.Duration) *gin.Engine {
	r := gin.New()
	r.GET("/main", SessionGate(auth.NewGate(store, nil, timeout)), func(c *gin.Context) {
		sess := c.MustGet(SessionKey).(models.Session)
		c.JSON(http.StatusOK, gin.H{"token": sess.AccessToken})
	})
	return r
}

func TestSessionGateRedirectsBrowsers(t *testing.T) {
	r := gatedRouter(session.NewMemoryStore(), time.Second)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/main", nil)
	req.Header.Set("Accept", "text/html")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSessionGateAnswersJSONClientsWithRedirectTarget(t *testing.T) {
	r := gatedRouter(session.NewMemoryStore(), time.Second)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/main", nil)
	req.Header.Set("Accept", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/", body["redirect"])
}

func TestSessionGatePassesAuthenticatedRequests(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), models.Session{AccessToken: "A1"}))
	r := gatedRouter(store, time.Second)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/main", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"A1"}`, w.Body.String())
}

func TestSessionGateRendersLoadingPlaceholder(t *testing.T) {
	r := gatedRouter(stalledStore{}, 10*time.Millisecond)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/main", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"state":"loading"}`, w.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "limits are per client")
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, "10.0.0.1:5000", "198.51.100.4"},
		{"garbage forwarded", map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.5"}, "10.0.0.1:5000", "198.51.100.5"},
		{"remote", nil, "192.0.2.1:4321", "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.header {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(c))
		})
	}
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), Metrics(reg))
	r.GET("/hotel/:id", func(c *gin.Context) {
		_, ok := c.Get("logger")
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hotel/4", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	n, err := testutil.GatherAndCount(reg, "luxstay_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
