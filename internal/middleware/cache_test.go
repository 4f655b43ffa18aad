package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemensatbana/marketplace-api/internal/config"
)

func TestResponseCachePassThroughWithoutRedis(t *testing.T) {
	mw := ResponseCache(config.CacheConfig{Enabled: true, TTL: 30 * time.Second, Prefix: "cache"}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "body")
	})
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"), "disabled cache leaves no trace")
}

func TestResponseCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{1, 2, 3})
	assert.False(t, ok)

	// Header length pointing past the end of the buffer.
	payload, err := encodePayload(http.StatusOK, http.Header{}, nil)
	require.NoError(t, err)
	_, _, _, ok = decodePayload(payload[:6])
	assert.False(t, ok)
}

func TestCacheKeyDependsOnQuery(t *testing.T) {
	e := echo.New()

	ctxFor := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/api/listings")
		return c
	}

	a := cacheKey("cache", ctxFor("/api/listings?category=emlak"))
	b := cacheKey("cache", ctxFor("/api/listings?category=moda"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cacheKey("cache", ctxFor("/api/listings?category=emlak")))
}

func TestTokenBucketPassThroughWithoutRedis(t *testing.T) {
	mw := TokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 10}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateKeyScoping(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/listings")

	anon := rateKey("rl", c)
	assert.Contains(t, anon, ":anon:")

	c.Set(ContextUserID, "u1")
	authed := rateKey("rl", c)
	assert.Contains(t, authed, ":u1:")
	assert.NotEqual(t, anon, authed, "principal changes the bucket")
}
