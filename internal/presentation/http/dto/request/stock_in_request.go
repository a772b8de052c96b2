package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockInItemRequest is one delivered product
type StockInItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreateStockInRequest represents a stock-in creation request
type CreateStockInRequest struct {
	SupplierID uuid.UUID            `json:"supplier_id" binding:"required"`
	Date       *time.Time           `json:"date"`
	Note       *string              `json:"note"`
	Items      []StockInItemRequest `json:"items" binding:"required,min=1,dive"`
}

// StockInFilterRequest represents stock-in list filters
type StockInFilterRequest struct {
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending approved"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Limit      int    `form:"limit"`
}
