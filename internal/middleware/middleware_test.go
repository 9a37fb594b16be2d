package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/spot-reservation/internal/config"
	"github.com/iliyamo/spot-reservation/internal/utils"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, time.Minute)
	require.NoError(t, err)
	mw := JWTAuth("secret")

	c, rec := newContext(http.MethodGet, "/v1/users/me")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token)
	require.NoError(t, mw(func(c echo.Context) error {
		id, ok := CurrentUserID(c)
		assert.True(t, ok)
		assert.Equal(t, uint64(7), id)
		return okHandler(c)
	})(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodGet, "/v1/users/me")
	require.NoError(t, mw(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodGet, "/v1/users/me")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token+"x")
	require.NoError(t, mw(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserKey(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	assert.Equal(t, "anon", userKey(c))
	c.Set(UserIDKey, uint64(12))
	assert.Equal(t, "12", userKey(c))
}

func TestBuildRateKey(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/v1/reservations")
	c.SetPath("/v1/reservations")
	c.Set(UserIDKey, uint64(3))
	c.Request().RemoteAddr = "10.0.0.1:5555"

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	assert.Equal(t, "rl:user:3", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip_user_route"
	assert.Equal(t, "rl:ip:10.0.0.1:user:3:route:POST /v1/reservations", buildRateKey(cfg, c))
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a, _ := newContext(http.MethodGet, "/v1/availability?date=2024-06-10&x=1")
	a.SetPath("/v1/availability")
	a.Set(UserIDKey, uint64(1))

	b, _ := newContext(http.MethodGet, "/v1/availability?x=1&date=2024-06-10")
	b.SetPath("/v1/availability")
	b.Set(UserIDKey, uint64(1))

	other, _ := newContext(http.MethodGet, "/v1/availability?date=2024-06-10&x=1")
	other.SetPath("/v1/availability")
	other.Set(UserIDKey, uint64(2))

	assert.Equal(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, b))
	assert.NotEqual(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, other))
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, cacheKeyFrom(cfg, a))
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"capacity":7}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.JSONEq(t, `{"capacity":7}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
	for _, mw := range []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, redis.NewClient(&redis.Options{})),
	} {
		c, rec := newContext(http.MethodGet, "/")
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTokenBucket_FailsOpenWhenRedisUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	c, rec := newContext(http.MethodPost, "/v1/reservations")
	require.NoError(t, NewTokenBucket(cfg, rdb)(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)

	c, rec := newContext(http.MethodGet, "/v1/pots/9")
	c.SetPath("/v1/pots/:id")
	c.Set(UserIDKey, uint64(4))
	require.NoError(t, RequestLogger()(func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "pot not found"})
	})(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "/v1/pots/:id", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "4", entry.Data["user_id"])
}

func TestRequestLogger_HandlerError(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)

	c, rec := newContext(http.MethodGet, "/boom")
	require.NoError(t, RequestLogger()(func(echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	})(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}
