package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salesdesk-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stockInRepository struct {
	db *gorm.DB
}

// NewStockInRepository creates a new stock-in repository
func NewStockInRepository(db *gorm.DB) domainRepo.StockInRepository {
	return &stockInRepository{db: db}
}

func (r *stockInRepository) Create(ctx context.Context, stockIn *entity.StockIn) error {
	return conn(ctx, r.db).Omit("Supplier", "CreatedBy", "Items.Product").Create(stockIn).Error
}

func (r *stockInRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockIn, error) {
	var stockIn entity.StockIn
	err := conn(ctx, r.db).
		Preload("Supplier").
		Preload("Items.Product").
		First(&stockIn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stockIn, err
}

func (r *stockInRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.StockIn, error) {
	var stockIn entity.StockIn
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&stockIn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stockIn, err
}

func (r *stockInRepository) Update(ctx context.Context, stockIn *entity.StockIn) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(stockIn).Error
}

func (r *stockInRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_in_id = ?", id).Delete(&entity.StockInItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.StockIn{}, "id = ?", id).Error
	}))
}

func (r *stockInRepository) List(ctx context.Context, params *domainRepo.StockInFilterParams) ([]entity.StockIn, int64, error) {
	var stockIns []entity.StockIn
	var total int64

	query := conn(ctx, r.db).Model(&entity.StockIn{})

	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.StartDate != nil {
		query = query.Where("date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("date < ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Supplier").
		Order("date DESC, created_at DESC").
		Find(&stockIns).Error

	return stockIns, total, err
}
