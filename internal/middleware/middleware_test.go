// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestAuthenticator(t *testing.T) {
	claims := &AccessTokenClaims{UserID: "u1", Role: RoleUser}

	t.Run("missing token", func(t *testing.T) {
		h := Authenticator(stubVerifier{claims: claims})(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		v := stubVerifier{err: fmt.Errorf("verify: %w", core.ErrTokenExpired)}
		h := Authenticator(v)(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, rec))
	})

	t.Run("valid token", func(t *testing.T) {
		h := Authenticator(stubVerifier{claims: claims})(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", rec.Header().Get("X-User"))
	})
}

func TestOptionalAuth_PassesAnonymous(t *testing.T) {
	v := stubVerifier{err: core.ErrTokenInvalid}
	h := OptionalAuth(v)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"user", RoleUser, http.StatusForbidden},
		{"admin", RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{
					UserID: "u1",
					Role:   tt.role,
				}))
			}
			rec := httptest.NewRecorder()
			RequireAdmin(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "bad id with spaces", seen)
	assert.Len(t, seen, 36)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer  tok ")
	assert.Equal(t, "tok", ExtractToken(req))
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rdb := newTestRedis(t)
	rl := NewRateLimiter(rdb, RateLimitConfig{
		Limit:  PerMinute(2, 2),
		Prefix: "auth:",
	})
	h := rl.Handler(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRoleRateLimiter_SkipsReadsAndSeparatesRoles(t *testing.T) {
	rdb := newTestRedis(t)
	mw := RoleRateLimiter(rdb, map[string]redis_rate.Limit{
		RoleUser:  PerMinute(1, 1),
		RoleAdmin: PerMinute(100, 100),
	})
	h := mw(okHandler())

	send := func(method, role string) int {
		req := httptest.NewRequest(method, "/posts", nil)
		req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{
			UserID: "u-" + role,
			Role:   role,
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost, RoleUser))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, RoleUser))
	assert.Equal(t, http.StatusOK, send(http.MethodGet, RoleUser))
	assert.Equal(t, http.StatusOK, send(http.MethodPost, RoleAdmin))
	assert.Equal(t, http.StatusOK, send(http.MethodPost, RoleAdmin))
}

func TestLocalLimiter(t *testing.T) {
	l := newLocalLimiter()
	limit := PerMinute(60, 1)

	res, err := l.allow("k", limit)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Allowed)

	res, err = l.allow("k", limit)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Allowed)
	assert.Positive(t, res.RetryAfter)
}
