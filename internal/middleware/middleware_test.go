package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCors(t *testing.T) {
	handler := CORS("https://homefoods.example")(okHandler())

	t.Run("OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://homefoods.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Key")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Normal request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://homefoods.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Default origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		CORS("")(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAuthenticate(t *testing.T) {
	sessions, err := auth.NewSessions("test-secret", time.Hour)
	require.NoError(t, err)
	mw := Authenticate(sessions)

	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := auth.SessionFrom(r.Context())
			assert.False(t, ok, "Context should not contain a session")
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Please sign in to continue"}`, w.Body.String())
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, _, err := sessions.Issue("cus-1", "9876543210")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.SessionFrom(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "cus-1", claims.CustomerID)
			w.WriteHeader(http.StatusOK)
		})

		mw(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"customer_id": "cus-1",
			"exp":         time.Now().Add(-time.Hour).Unix(),
		})
		tokenString, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		mw(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireSession(t *testing.T) {
	w := httptest.NewRecorder()
	RequireSession(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(auth.WithSession(req.Context(), &auth.Claims{CustomerID: "cus-1"}))
	w = httptest.NewRecorder()
	RequireSession(okHandler()).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	checker, err := auth.NewAdminChecker("admin-secret", "")
	require.NoError(t, err)
	handler := RequireAdmin(checker)(okHandler())

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"Admin header", "X-Admin-Key", "admin-secret", http.StatusOK},
		{"Bearer", "Authorization", "Bearer admin-secret", http.StatusOK},
		{"Wrong key", "X-Admin-Key", "nope", http.StatusUnauthorized},
		{"Missing", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/admin/reviews/rev_1", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("Strict tier for payment paths", func(t *testing.T) {
		l := NewRateLimiter("")
		defer l.Close()
		handler := l.Handler(okHandler())

		codes := make([]int, 0, burstStrict+1)
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/orders/ORD-1/payment", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, http.StatusOK, codes[0])
		assert.Equal(t, http.StatusTooManyRequests, codes[burstStrict])
	})

	t.Run("Separate buckets per caller", func(t *testing.T) {
		l := NewRateLimiter("")
		defer l.Close()
		handler := l.Handler(okHandler())

		for i := 0; i < burstStrict; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		req.Header.Set("X-Device-ID", "phone-2")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Tiers", func(t *testing.T) {
		l := NewRateLimiter("internal")
		defer l.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		_, _, tier := l.resolveRateTier(req)
		assert.Equal(t, "general", tier)

		req.Header.Set("X-Service-Auth", "internal")
		_, _, tier = l.resolveRateTier(req)
		assert.Equal(t, "internal", tier)

		_, _, tier = l.resolveRateTier(httptest.NewRequest(http.MethodPost, "/api/customers/login", nil))
		assert.Equal(t, "strict", tier)
	})

	t.Run("Cleanup drops idle visitors", func(t *testing.T) {
		l := NewRateLimiter("")
		defer l.Close()
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		l.getVisitor("ip:1:general", limitGeneral, burstGeneral)
		now = now.Add(visitorTTL + time.Second)
		l.cleanup()

		l.mu.Lock()
		defer l.mu.Unlock()
		assert.Empty(t, l.visitors)
	})
}

func TestRequestIDWithAuthenticate(t *testing.T) {
	sessions, err := auth.NewSessions("test-secret", time.Hour)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, logger.RequestIDFrom(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	handler := logger.RequestIDMiddleware(Authenticate(sessions)(next))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(logger.RequestIDHeader))
}
