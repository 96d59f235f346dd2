package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/response"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/redis"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	idempotencyHitHeader = "X-Idempotency-Hit"
	// LockDuration covers a full submission including confirmation polling
	LockDuration = 2 * time.Minute
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	idempotencyProcessing = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a request already
// submitted with the same Idempotency-Key by the same wallet
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		scope := "anonymous"
		if session, ok := GetWalletSession(c); ok {
			scope = session.Address
		}
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", scope, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == idempotencyProcessing:
			response.Error(c, domainerrors.Conflict("Request already in progress"))
			c.Abort()
			return
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				c.Header(idempotencyHitHeader, "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
			logger.Warn(ctx, "Discarding unreadable idempotency record", zap.String("key", storageKey))
		case !redis.IsNil(err):
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, idempotencyProcessing, LockDuration)
		if err != nil || !acquired {
			response.Error(c, domainerrors.Conflict("Request in progress"))
			c.Abort()
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// the client may be gone; the record must still settle
		ctx = context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices && json.Valid(w.body.Bytes()) {
			payload, err := json.Marshal(cachedResponse{Status: status, Body: w.body.Bytes()})
			if err == nil {
				_ = redisSet(ctx, storageKey, string(payload), RetentionDuration)
				return
			}
		}
		// failed requests may be retried
		_ = redisDel(ctx, storageKey)
	}
}
