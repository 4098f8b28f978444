package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/onvent/seat-ledger/internal/config"
)

// AvailabilityCache caches the public availability endpoint in Redis,
// keyed per event.  It owns the key scheme so the booking facade can
// invalidate an event's entry from inside the mutation path: a reserve
// or cancel deletes the key before the response is returned, which
// keeps repeated availability reads identical between writes and never
// stale past a write.  The TTL is only a backstop for missed
// invalidations.
type AvailabilityCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewAvailabilityCache returns a cache helper.  With caching disabled
// or Redis unavailable the helper stays usable: the middleware passes
// through and Invalidate is a no-op.
func NewAvailabilityCache(cfg config.CacheConfig, rdb *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{cfg: cfg, rdb: rdb}
}

func (a *AvailabilityCache) enabled() bool { return a != nil && a.cfg.Enabled && a.rdb != nil }

// key builds the Redis key for one event's cached availability body.
func (a *AvailabilityCache) key(eventID string) string {
	return a.cfg.Prefix + ":event:" + eventID
}

// Invalidate drops the cached availability for an event.  Errors are
// ignored: the worst case is one TTL window of staleness, and a broken
// cache must never fail a booking.
func (a *AvailabilityCache) Invalidate(ctx context.Context, eventID string) {
	if !a.enabled() {
		return
	}
	_ = a.rdb.Del(ctx, a.key(eventID)).Err()
}

// captureWriter tees the response body while forwarding to the client
// so a successful payload can be stored after the handler ran.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// Middleware serves GET responses from Redis when present and captures
// 200 responses for later hits.  Only the JSON body is stored; status
// and content type are fixed for this endpoint.
func (a *AvailabilityCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !a.enabled() || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := a.key(c.Param("id"))

			if body, err := a.rdb.Get(ctx, key).Bytes(); err == nil && len(body) > 0 {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK {
				_ = a.rdb.SetEx(context.Background(), key, cw.buf.Bytes(), a.cfg.TTL).Err()
			}
			return nil
		}
	}
}
