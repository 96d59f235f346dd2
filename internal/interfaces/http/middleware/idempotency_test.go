package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/pkg/redis"
)

func newIdempotencyRouter(t *testing.T, status int) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	calls := 0
	r := gin.New()
	r.POST("/lotteries", func(c *gin.Context) {
		c.Set(WalletSessionKey, &entities.WalletSession{Address: "GA", Granted: true})
	}, IdempotencyMiddleware(), func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})
	return r, &calls
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })
	return srv
}

func postWithKey(r http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/lotteries", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	srv := useMiniredis(t)
	r, calls := newIdempotencyRouter(t, http.StatusAccepted)

	first := postWithKey(r, "k1")
	assert.Equal(t, http.StatusAccepted, first.Code)

	second := postWithKey(r, "k1")
	assert.Equal(t, http.StatusAccepted, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *calls)
	assert.True(t, srv.Exists("idempotency:GA:/lotteries:k1"))

	postWithKey(r, "k2")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	useMiniredis(t)
	r, calls := newIdempotencyRouter(t, http.StatusOK)
	postWithKey(r, "")
	postWithKey(r, "")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	srv := useMiniredis(t)
	r, calls := newIdempotencyRouter(t, http.StatusBadGateway)

	postWithKey(r, "k1")
	assert.False(t, srv.Exists("idempotency:GA:/lotteries:k1"))
	postWithKey(r, "k1")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_InProgressConflict(t *testing.T) {
	srv := useMiniredis(t)
	require.NoError(t, srv.Set("idempotency:GA:/lotteries:k1", idempotencyProcessing))
	r, calls := newIdempotencyRouter(t, http.StatusOK)

	w := postWithKey(r, "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, *calls)
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	origGet, origSetNX := redisGet, redisSetNX
	t.Cleanup(func() { redisGet, redisSetNX = origGet, origSetNX })
	r, calls := newIdempotencyRouter(t, http.StatusOK)

	redisGet = func(context.Context, string) (string, error) { return "", errors.New("down") }
	w := postWithKey(r, "k1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)

	redisGet = func(context.Context, string) (string, error) { return "", goredis.Nil }
	redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return false, nil }
	w = postWithKey(r, "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, *calls)
}
