package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salesdesk-api/pkg/logger"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// idempotencyPendingTTL bounds a reservation whose request never finished
	idempotencyPendingTTL = 5 * time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Required rejects requests that carry no key
	Required bool
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST is retried with the same
// key by the same user. The key is reserved before the handler runs, so a second
// request arriving while the first is in flight gets 409 instead of running twice.
// Only 2xx responses are stored; a failed request releases its key for a retry.
// Reusing a key for a different body is rejected.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			if config.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		value, _ := c.Get(ContextUserID)
		userID, ok := value.(uuid.UUID)
		if !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if existing != nil && existing.IsExpired() {
			// frees the unique (key, user) slot for this request
			if err := config.Repo.DeleteExpired(c.Request.Context()); err != nil {
				logger.LogError("middleware", "Idempotency", "delete expired keys", nil, err)
			}
			existing = nil
		}

		if existing != nil {
			if existing.RequestHash != "" && existing.RequestHash != requestHash {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			if existing.IsPending() {
				inFlight(c)
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:         idempotencyKey,
			UserID:      userID,
			Endpoint:    c.Request.Method + " " + c.FullPath(),
			RequestHash: requestHash,
			ExpiresAt:   time.Now().Add(idempotencyPendingTTL),
		}
		reserved, err := config.Repo.Reserve(c.Request.Context(), ikey)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !reserved {
			inFlight(c)
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// the outcome is recorded even when the client has gone away
		ctx := context.WithoutCancel(c.Request.Context())

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := config.Repo.Release(ctx, idempotencyKey, userID); err != nil {
				logger.LogError("middleware", "Idempotency", "release idempotency key", ikey.Endpoint, err)
			}
			return
		}

		ikey.ResponseCode = c.Writer.Status()
		ikey.ResponseBody = blw.body.String()
		ikey.ExpiresAt = time.Now().Add(IdempotencyKeyTTL)
		if err := config.Repo.Complete(ctx, ikey); err != nil {
			logger.LogError("middleware", "Idempotency", "store idempotency key", ikey.Endpoint, err)
		}
	}
}

func inFlight(c *gin.Context) {
	c.Header("Retry-After", "1")
	response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
	c.Abort()
}
