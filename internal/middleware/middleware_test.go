package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetRequestID(r.Context())))
})

func TestRequestID(t *testing.T) {
	t.Run("generated when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequestID(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(RequestIdHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("propagated from client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIdHeader, "abc-123")
		rec := httptest.NewRecorder()
		RequestID(ok).ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIdHeader))
		assert.Equal(t, "abc-123", rec.Body.String())
	})
}

func TestLoggingWriter(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code, "first WriteHeader wins")
	assert.Equal(t, "short", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	current := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	handler := newRateLimiter(2, time.Minute, func() time.Time { return current }).Handler(ok)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := call("10.0.0.1:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001").Code)

	limited := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate_limit_exceeded")

	// другой клиент считается отдельно
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code)

	current = current.Add(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5003").Code)
}

func TestRateLimit_ForgetsExpiredClients(t *testing.T) {
	current := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(5, time.Minute, func() time.Time { return current })
	handler := limiter.Handler(ok)

	call := func(addr string) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	for i := range 50 {
		call(fmt.Sprintf("10.0.1.%d:4000", i))
	}
	assert.Equal(t, 50, limiter.size())

	current = current.Add(30 * time.Second)
	call("10.0.2.1:4000")
	assert.Equal(t, 51, limiter.size(), "windows still open")

	current = current.Add(45 * time.Second)
	call("10.0.2.2:4000")
	// первые 50 истекли, 10.0.2.1 ещё в своём окне
	assert.Equal(t, 2, limiter.size())
}

func TestRateLimit_Disabled(t *testing.T) {
	handler := RateLimit(0)(ok)
	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(ok)

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetIp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4312"
	assert.Equal(t, "192.168.1.5", getIp(req))

	req.RemoteAddr = "garbage"
	assert.Equal(t, "garbage", getIp(req))
}
