package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcart/api/internal/ratelimit"
	"smartcart/api/internal/security"
)

const testSecret = "middleware-test-secret"

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	engine.GET("/ping", func(c *gin.Context) {
		userID, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user": userID})
	})
	return engine
}

func serve(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "172.16.0.9:1234"
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthMissingHeader(t *testing.T) {
	engine := newEngine(Auth(testSecret))
	rec := serve(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	engine := newEngine(Auth(testSecret))
	rec := serve(engine, http.MethodGet, "/ping", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthGarbageToken(t *testing.T) {
	engine := newEngine(Auth(testSecret))
	rec := serve(engine, http.MethodGet, "/ping", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	pair, err := security.IssueTokenPair(testSecret, "user-7")
	require.NoError(t, err)

	engine := newEngine(Auth(testSecret))
	rec := serve(engine, http.MethodGet, "/ping", map[string]string{"Authorization": "Bearer " + pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthExposesUserID(t *testing.T) {
	pair, err := security.IssueTokenPair(testSecret, "user-7")
	require.NoError(t, err)

	engine := newEngine(Auth(testSecret))
	rec := serve(engine, http.MethodGet, "/ping", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-7")
}

func TestCORSAllowAllWithoutOrigin(t *testing.T) {
	engine := newEngine(CORS(nil))
	rec := serve(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowAllEchoesOrigin(t *testing.T) {
	engine := newEngine(CORS(nil))
	rec := serve(engine, http.MethodGet, "/ping", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSAllowlist(t *testing.T) {
	engine := newEngine(CORS([]string{"https://app.example.com"}))

	rec := serve(engine, http.MethodGet, "/ping", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(engine, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	// The request itself is not blocked, the browser enforces the policy.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(CORS(nil))
	rec := serve(engine, http.MethodOptions, "/ping", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Refresh-Token")
}

func TestCORSHeadersSurviveAbort(t *testing.T) {
	engine := newEngine(CORS(nil), Auth(testSecret))
	rec := serve(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitExhaustion(t *testing.T) {
	limiter := ratelimit.New("test", ratelimit.NewMemoryStore(), 2, time.Minute)
	engine := newEngine(RateLimit(limiter, zerolog.Nop()))

	for i := 0; i < 2; i++ {
		rec := serve(engine, http.MethodGet, "/ping", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, context.DeadlineExceeded
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	limiter := ratelimit.New("test", failingStore{}, 1, time.Minute)
	engine := newEngine(RateLimit(limiter, zerolog.Nop()))

	rec := serve(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
