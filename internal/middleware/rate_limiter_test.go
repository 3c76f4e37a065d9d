package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Global burst is 10 and per-city burst is 2 by default, so
// refills are never reached within a test.

func newLimitedMux() *http.ServeMux {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux := http.NewServeMux()
	mux.Handle("GET /weather/{city}", RateLimitMiddleware(h))
	return mux
}

func serve(mux http.Handler, ip, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	msg, _ := resp["error"].(string)
	return msg
}

func TestRateLimitMiddleware_GlobalBurst(t *testing.T) {
	ResetVisitors()
	SetParamKey("city")
	mux := newLimitedMux()
	ip := "1.2.3.4:1234"

	for i := 0; i < 10; i++ {
		w := serve(mux, ip, fmt.Sprintf("/weather/city%d", i))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := serve(mux, ip, "/weather/city10")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, strings.Contains(errorMessage(t, w), "per user/IP"))
}

func TestRateLimitMiddleware_PerCityBurst(t *testing.T) {
	ResetVisitors()
	SetParamKey("city")
	mux := newLimitedMux()
	ip := "2.3.4.5:2345"

	for i := 0; i < 2; i++ {
		w := serve(mux, ip, "/weather/London")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := serve(mux, ip, "/weather/London")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, errorMessage(t, w), "per city")

	// Another city from the same IP is still allowed.
	w = serve(mux, ip, "/weather/Paris")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_SeparateIPs(t *testing.T) {
	ResetVisitors()
	mux := newLimitedMux()

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(mux, "3.3.3.3:1", "/weather/Rome").Code)
	}
	assert.Equal(t, http.StatusOK, serve(mux, "4.4.4.4:1", "/weather/Rome").Code)
}

func TestGetIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/weather/Paris", nil)
	req.RemoteAddr = "5.6.7.8:9999"
	assert.Equal(t, "5.6.7.8", getIP(req))

	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	assert.Equal(t, "9.9.9.9", getIP(req))

	req.Header.Del("X-Forwarded-For")
	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", getIP(req))
}

func TestCleanupVisitors(t *testing.T) {
	ResetVisitors()
	getGlobalLimiter("1.1.1.1")
	getParamLimiter("1.1.1.1", "Paris")

	cleanupVisitors(time.Hour)
	assert.Len(t, globalVisitors, 1)
	assert.Len(t, paramVisitors, 1)

	time.Sleep(5 * time.Millisecond)
	cleanupVisitors(time.Millisecond)
	assert.Empty(t, globalVisitors)
	assert.Empty(t, paramVisitors)
}
