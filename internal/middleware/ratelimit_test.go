package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onvent/seat-ledger/internal/config"
)

func TestTokenBucketPassthrough(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	// Disabled limiter and missing Redis both pass requests through.
	for name, cfg := range map[string]config.RateLimitConfig{
		"disabled": {Enabled: false},
		"no redis": {Enabled: true},
	} {
		t.Run(name, func(t *testing.T) {
			mw := NewTokenBucket(cfg, nil)(next)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			require.NoError(t, mw(e.NewContext(req, rec)))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	newCtx := func(userID any) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		c := e.NewContext(req, httptest.NewRecorder())
		if userID != nil {
			c.Set("user_id", userID)
		}
		return c
	}

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}
	assert.Equal(t, "rl:ip:203.0.113.9", buildRateKey(cfg, newCtx(nil)))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:7", buildRateKey(cfg, newCtx("7")))
	assert.Equal(t, "rl:user:anon", buildRateKey(cfg, newCtx(nil)))

	cfg.KeyStrategy = "ip_user"
	assert.Equal(t, "rl:ip:203.0.113.9:user:7", buildRateKey(cfg, newCtx(float64(7))))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64(5))
	assert.Equal(t, int64(5), asInt64(5.0))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}
