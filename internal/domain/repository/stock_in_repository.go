package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
)

// StockInRepository defines the interface for stock-in data operations
type StockInRepository interface {
	// Create inserts the stock-in together with its items
	Create(ctx context.Context, stockIn *entity.StockIn) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StockIn, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.StockIn, error)
	Update(ctx context.Context, stockIn *entity.StockIn) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *StockInFilterParams) ([]entity.StockIn, int64, error)
}

type StockInFilterParams struct {
	Pagination *pagination.PaginationParams
	SupplierID *uuid.UUID
	Status     *enum.StockInStatus
	StartDate  *time.Time
	EndDate    *time.Time
}
