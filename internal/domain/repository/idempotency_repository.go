package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed by client key and user.
// A key is reserved before the request runs and completed with its response.
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve inserts a pending key; false means another request already holds it
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a pending key so the client can retry with it
	Release(ctx context.Context, key string, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
