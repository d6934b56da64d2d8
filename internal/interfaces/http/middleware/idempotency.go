package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 255
)

// storedResponse is what a completed key replays
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request that already
// completed under the same Idempotency-Key and refuses a concurrent
// duplicate. Keys are scoped per caller and route. Only 2xx responses are
// kept; anything else releases the key so the caller can retry.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		clientKey := c.GetHeader(IdempotencyKeyHeader)
		if !cfg.Enabled || store == nil || clientKey == "" {
			c.Next()
			return
		}
		if len(clientKey) > maxIdempotencyKeyLength {
			abortWithError(c, shared.CodeValidation, "Idempotency-Key is too long")
			return
		}

		ctx := c.Request.Context()
		key := c.GetString(logger.GinUserIDKey) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + clientKey

		if raw, found, err := store.Lookup(ctx, key); err != nil {
			log.Error("idempotency lookup failed", zap.Error(err))
			abortWithError(c, shared.CodeInternal, "Idempotency store unavailable")
			return
		} else if found {
			var stored storedResponse
			if err := json.Unmarshal(raw, &stored); err == nil {
				c.Header(IdempotentReplayHeader, "true")
				c.Data(stored.Status, stored.ContentType, stored.Body)
				c.Abort()
				return
			}
			log.Warn("discarding unreadable idempotent response", zap.String("key", clientKey))
			_ = store.Release(ctx, key)
		}

		reserved, err := store.Reserve(ctx, key, cfg.TTL)
		if err != nil {
			log.Error("idempotency reserve failed", zap.Error(err))
			abortWithError(c, shared.CodeInternal, "Idempotency store unavailable")
			return
		}
		if !reserved {
			abortWithError(c, shared.CodeBadRequest, "A request with this Idempotency-Key is already in progress")
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Release(ctx, key); err != nil {
				log.Warn("idempotency release failed", zap.Error(err))
			}
			return
		}
		raw, _ := json.Marshal(storedResponse{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		// The handler already committed, so a failed store only loses replay
		if err := store.Complete(ctx, key, raw, cfg.TTL); err != nil {
			log.Error("idempotency complete failed", zap.Error(err), zap.Duration("ttl", cfg.TTL))
		}
	}
}

