package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sentinelsec/sentinel/internal/metrics/mocks"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// Test RateLimiter.
func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{"normal limits", 10, time.Minute},
		{"high limits", 1000, time.Second},
		{"low limits", 1, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(tt.limit, tt.window)

			assert.NotNil(t, limiter)
			assert.Equal(t, tt.limit, limiter.limit)
			assert.Equal(t, tt.window, limiter.window)
			assert.NotNil(t, limiter.requests)
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		window   time.Duration
		requests []string
		expected []bool
	}{
		{
			name:     "under limit",
			limit:    5,
			window:   time.Minute,
			requests: []string{"1.1.1.1", "1.1.1.1", "1.1.1.1"},
			expected: []bool{true, true, true},
		},
		{
			name:     "at limit",
			limit:    2,
			window:   time.Minute,
			requests: []string{"1.1.1.1", "1.1.1.1"},
			expected: []bool{true, true},
		},
		{
			name:     "over limit",
			limit:    2,
			window:   time.Minute,
			requests: []string{"1.1.1.1", "1.1.1.1", "1.1.1.1"},
			expected: []bool{true, true, false},
		},
		{
			name:     "different IPs",
			limit:    1,
			window:   time.Minute,
			requests: []string{"1.1.1.1", "2.2.2.2", "1.1.1.1"},
			expected: []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(tt.limit, tt.window)

			for i, ip := range tt.requests {
				result := limiter.Allow(ip)
				assert.Equal(t, tt.expected[i], result,
					"Request %d for IP %s", i+1, ip)
			}
		})
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	limiter := NewRateLimiter(1, 100*time.Millisecond)

	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))

	// Wait for window to expire
	time.Sleep(150 * time.Millisecond)

	assert.True(t, limiter.Allow("1.1.1.1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(10, 100*time.Millisecond)

	limiter.Allow("1.1.1.1")
	limiter.Allow("2.2.2.2")
	limiter.Allow("3.3.3.3")

	limiter.mutex.RLock()
	initialCount := len(limiter.requests)
	limiter.mutex.RUnlock()
	assert.Equal(t, 3, initialCount)

	// Wait for entries to become old
	time.Sleep(250 * time.Millisecond)

	limiter.Cleanup()

	limiter.mutex.RLock()
	finalCount := len(limiter.requests)
	limiter.mutex.RUnlock()
	assert.Equal(t, 0, finalCount)
}

func TestLoggingMiddleware(t *testing.T) {
	t.Run("assigns request ID and passes through", func(t *testing.T) {
		var seenID string
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenID = GetRequestID(r)
			w.WriteHeader(http.StatusOK)
		})

		handler := Logging(createTestLogger())(testHandler)

		req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, seenID)
		assert.Equal(t, seenID, w.Header().Get("X-Request-ID"))
	})

	t.Run("honors caller-supplied request ID", func(t *testing.T) {
		var seenID string
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenID = GetRequestID(r)
		})

		handler := Logging(createTestLogger())(testHandler)

		req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
		req.Header.Set("X-Request-ID", "caller-id-42")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "caller-id-42", seenID)
		assert.Equal(t, "caller-id-42", w.Header().Get("X-Request-ID"))
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{"success response", http.StatusOK, false},
		{"client error", http.StatusBadRequest, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			metricsRegistry := mocks.NewMockMetricsRegistry(ctrl)
			metricsRegistry.EXPECT().Counter("http_requests_total", gomock.Any()).Times(1)
			metricsRegistry.EXPECT().Histogram("http_request_duration_seconds", gomock.Any(), gomock.Any()).Times(1)
			metricsRegistry.EXPECT().Histogram("http_response_size_bytes", gomock.Any(), gomock.Any()).Times(1)
			if tt.expectError {
				metricsRegistry.EXPECT().Counter("http_errors_total", gomock.Any()).Times(1)
			}

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})

			handler := Metrics(metricsRegistry)(testHandler)

			req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	handler := Recovery(createTestLogger())(testHandler)

	req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
	ctx := context.WithValue(req.Context(), RequestIDKey, "req-panic-1")
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Internal server error", response["error"])
	assert.Equal(t, "req-panic-1", response["request_id"])
}

func TestAuthenticationMiddleware(t *testing.T) {
	verify := func(ctx context.Context, key string) error {
		if key == "sk_good" {
			return nil
		}
		return assert.AnError
	}

	tests := []struct {
		name           string
		path           string
		headers        map[string]string
		expectedStatus int
		shouldCallNext bool
	}{
		{
			name:           "valid API key in X-API-Key header",
			path:           "/api/v1/scans",
			headers:        map[string]string{"X-API-Key": "sk_good"},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "valid API key in Authorization header",
			path:           "/api/v1/devices",
			headers:        map[string]string{"Authorization": "Bearer sk_good"},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "invalid API key",
			path:           "/api/v1/scans",
			headers:        map[string]string{"X-API-Key": "sk_bad"},
			expectedStatus: http.StatusUnauthorized,
			shouldCallNext: false,
		},
		{
			name:           "missing API key",
			path:           "/api/v1/scans",
			headers:        map[string]string{},
			expectedStatus: http.StatusUnauthorized,
			shouldCallNext: false,
		},
		{
			name:           "health endpoint bypass",
			path:           "/api/v1/health",
			headers:        map[string]string{},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "liveness endpoint bypass",
			path:           "/api/v1/liveness",
			headers:        map[string]string{},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "readiness endpoint bypass",
			path:           "/api/v1/readiness",
			headers:        map[string]string{},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "version endpoint bypass",
			path:           "/api/v1/version",
			headers:        map[string]string{},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "metrics endpoint bypass",
			path:           "/metrics",
			headers:        map[string]string{},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
		{
			name:           "swagger assets bypass",
			path:           "/swagger/swagger-ui.css",
			headers:        map[string]string{},
			expectedStatus: http.StatusOK,
			shouldCallNext: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := createTestLogger()
			nextCalled := false

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("authenticated"))
			})

			handler := Authentication(verify, logger)(testHandler)

			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			ctx := context.WithValue(req.Context(), RequestIDKey, "test-req-123")
			req = req.WithContext(ctx)

			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.shouldCallNext, nextCalled)

			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

				var response map[string]interface{}
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)

				assert.Contains(t, response["error"], "Authentication")
				assert.Equal(t, "test-req-123", response["request_id"])
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := RateLimit(2, time.Minute, createTestLogger())(testHandler)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
		req.RemoteAddr = "10.0.0.9:51234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)

		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// A different client is unaffected
	req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
	req.RemoteAddr = "10.0.0.10:51234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContentTypeMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		contentType    string
		expectedStatus int
	}{
		{"GET without content type", "GET", "", http.StatusOK},
		{"DELETE without content type", "DELETE", "", http.StatusOK},
		{"POST with JSON", "POST", "application/json", http.StatusOK},
		{"POST with JSON and charset", "POST", "application/json; charset=utf-8", http.StatusOK},
		{"POST without content type", "POST", "", http.StatusOK},
		{"POST with XML", "POST", "application/xml", http.StatusUnsupportedMediaType},
		{"PUT with form data", "PUT", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"PATCH with text", "PATCH", "text/plain", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			handler := ContentType()(testHandler)

			req := httptest.NewRequest(tt.method, "/api/v1/devices", http.NoBody)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("allowed origin", func(t *testing.T) {
		handler := CORS([]string{"https://console.example.com"}, []string{"Content-Type", "X-API-Key"},
			[]string{"GET", "POST"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
		req.Header.Set("Origin", "https://console.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
	})

	t.Run("disallowed origin gets no allow header", func(t *testing.T) {
		handler := CORS([]string{"https://console.example.com"}, nil, nil)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

		req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		nextCalled := false
		handler := CORS([]string{"*"}, nil, []string{"GET", "POST"})(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}))

		req := httptest.NewRequest("OPTIONS", "/api/v1/devices", http.NoBody)
		req.Header.Set("Origin", "https://anything.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, nextCalled)
	})
}

func TestRequestTimeoutMiddleware(t *testing.T) {
	handler := RequestTimeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 20*time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func TestGenerateRequestID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateRequestID()
		assert.True(t, len(id) > 4)
		assert.Contains(t, id, "req_")
		assert.False(t, seen[id], "request IDs must be unique")
		seen[id] = true
	}
}

func TestGetRequestID(t *testing.T) {
	t.Run("present in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", http.NoBody)
		ctx := context.WithValue(req.Context(), RequestIDKey, "known-id")
		req = req.WithContext(ctx)

		assert.Equal(t, "known-id", GetRequestID(req))
	})

	t.Run("absent from context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", http.NoBody)
		assert.Equal(t, "unknown", GetRequestID(req))
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "X-Forwarded-For single",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			remoteAddr: "10.0.0.1:1234",
			expected:   "203.0.113.5",
		},
		{
			name:       "X-Forwarded-For chain takes first",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"},
			remoteAddr: "10.0.0.1:1234",
			expected:   "203.0.113.5",
		},
		{
			name:       "X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			remoteAddr: "10.0.0.1:1234",
			expected:   "198.51.100.7",
		},
		{
			name:       "remote addr fallback",
			headers:    map[string]string{},
			remoteAddr: "192.0.2.9:5555",
			expected:   "192.0.2.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

func TestResponseWriter(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Equal(t, 5, rw.size)
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestIsPublicPath(t *testing.T) {
	assert.True(t, isPublicPath("/api/v1/health"))
	assert.True(t, isPublicPath("/metrics"))
	assert.True(t, isPublicPath("/swagger/index.html"))
	assert.True(t, isPublicPath("/swagger/doc.json"))
	assert.False(t, isPublicPath("/api/v1/devices"))
	assert.False(t, isPublicPath("/api/v1/admin/keys"))
}

func TestMiddlewareChaining(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metricsRegistry := mocks.NewMockMetricsRegistry(ctrl)
	metricsRegistry.EXPECT().Counter("http_requests_total", gomock.Any()).AnyTimes()
	metricsRegistry.EXPECT().Histogram("http_request_duration_seconds", gomock.Any(), gomock.Any()).AnyTimes()
	metricsRegistry.EXPECT().Histogram("http_response_size_bytes", gomock.Any(), gomock.Any()).AnyTimes()

	logger := createTestLogger()
	verify := func(ctx context.Context, key string) error {
		if key == "sk_good" {
			return nil
		}
		return assert.AnError
	}

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("chained"))
	})
	handler = Authentication(verify, logger)(handler)
	handler = ContentType()(handler)
	handler = Metrics(metricsRegistry)(handler)
	handler = Logging(logger)(handler)
	handler = Recovery(logger)(handler)

	req := httptest.NewRequest("GET", "/api/v1/devices", http.NoBody)
	req.Header.Set("X-API-Key", "sk_good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chained", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
