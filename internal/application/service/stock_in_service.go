package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/sangkips/salesdesk-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// StockInService handles deliveries from suppliers
type StockInService struct {
	transactor   repository.Transactor
	stockInRepo  repository.StockInRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	now          func() time.Time
}

// NewStockInService creates a new stock-in service
func NewStockInService(
	transactor repository.Transactor,
	stockInRepo repository.StockInRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) *StockInService {
	return &StockInService{
		transactor:   transactor,
		stockInRepo:  stockInRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		now:          time.Now,
	}
}

// StockInItemInput represents an item in a stock-in
type StockInItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
}

// CreateStockInInput represents the create stock-in input
type CreateStockInInput struct {
	UserID     uuid.UUID
	SupplierID uuid.UUID
	Date       *time.Time
	Note       *string
	Items      []StockInItemInput
}

// CreateStockIn records a pending stock-in. Stock is untouched until approval.
func (s *StockInService) CreateStockIn(ctx context.Context, input *CreateStockInInput) (*entity.StockIn, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewFieldValidationError("items", "at least one item is required")
	}
	var fieldErrs []apperror.FieldError
	for i, item := range input.Items {
		prefix := "items[" + strconv.Itoa(i) + "]"
		if item.Quantity <= 0 {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: prefix + ".quantity", Message: "must be greater than 0"})
		}
		if item.UnitCost.IsNegative() {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: prefix + ".unit_cost", Message: "must not be negative"})
		}
	}
	if len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	supplier, err := s.supplierRepo.GetByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}

	// Batch fetch all products in one query
	products, err := s.productRepo.GetByIDs(ctx, sortedIDs(stockInQuantities(input.Items)))
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}

	total := decimal.Zero
	items := make([]entity.StockInItem, 0, len(input.Items))
	for _, item := range input.Items {
		if !known[item.ProductID] {
			return nil, apperror.NewProductNotFoundError(item.ProductID)
		}
		lineTotal := item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(lineTotal)
		items = append(items, entity.StockInItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			Total:     lineTotal,
		})
	}

	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}

	stockIn := &entity.StockIn{
		ReferenceNo: utils.GenerateReferenceNo("STK"),
		SupplierID:  input.SupplierID,
		CreatedByID: input.UserID,
		Date:        date,
		Status:      enum.StockInStatusPending,
		TotalAmount: total,
		Note:        input.Note,
		Items:       items,
	}

	if err := s.stockInRepo.Create(ctx, stockIn); err != nil {
		return nil, err
	}

	return s.GetStockIn(ctx, stockIn.ID)
}

// GetStockIn retrieves a stock-in with its items
func (s *StockInService) GetStockIn(ctx context.Context, id uuid.UUID) (*entity.StockIn, error) {
	stockIn, err := s.stockInRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stockIn == nil {
		return nil, apperror.NewNotFoundError("Stock-in")
	}
	return stockIn, nil
}

// ListStockIns lists stock-ins with filtering
func (s *StockInService) ListStockIns(ctx context.Context, params *repository.StockInFilterParams) (*pagination.PaginatedResult[entity.StockIn], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	stockIns, total, err := s.stockInRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(stockIns, pag), nil
}

// ApproveStockIn marks a pending stock-in approved and adds its quantities to
// stock in the same transaction.
func (s *StockInService) ApproveStockIn(ctx context.Context, userID, id uuid.UUID) (*entity.StockIn, error) {
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		stockIn, err := s.stockInRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if stockIn == nil {
			return apperror.NewNotFoundError("Stock-in")
		}
		if !stockIn.IsPending() {
			return apperror.NewConflictError("Stock-in is already approved")
		}

		increments := make(map[uuid.UUID]int, len(stockIn.Items))
		for _, item := range stockIn.Items {
			increments[item.ProductID] += item.Quantity
		}
		// sorted so concurrent approvals lock rows in the same order
		for _, productID := range sortedIDs(increments) {
			if err := s.productRepo.IncrementStock(ctx, productID, increments[productID]); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperror.NewProductNotFoundError(productID)
				}
				return err
			}
		}

		approvedAt := s.now()
		stockIn.Status = enum.StockInStatusApproved
		stockIn.ApprovedByID = &userID
		stockIn.ApprovedAt = &approvedAt
		return s.stockInRepo.Update(ctx, stockIn)
	})
	if err != nil {
		return nil, err
	}

	return s.GetStockIn(ctx, id)
}

// DeleteStockIn deletes a stock-in that has not been approved
func (s *StockInService) DeleteStockIn(ctx context.Context, id uuid.UUID) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		stockIn, err := s.stockInRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if stockIn == nil {
			return apperror.NewNotFoundError("Stock-in")
		}
		if !stockIn.IsPending() {
			return apperror.NewConflictError("Cannot delete an approved stock-in")
		}
		return translateDeleteError(s.stockInRepo.Delete(ctx, id), "Stock-in")
	})
}

func stockInQuantities(items []StockInItemInput) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		out[item.ProductID] += item.Quantity
	}
	return out
}
