package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePromotionRequest represents a promotion creation request
type CreatePromotionRequest struct {
	Name            string          `json:"name" binding:"required,min=2,max=255"`
	Code            string          `json:"code" binding:"required,max=100"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        *time.Time      `json:"starts_at"`
	EndsAt          *time.Time      `json:"ends_at"`
	IsActive        *bool           `json:"is_active"`
}

// UpdatePromotionRequest represents a promotion update request
type UpdatePromotionRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Code            *string          `json:"code" binding:"omitempty,min=1,max=100"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	StartsAt        *time.Time       `json:"starts_at"`
	EndsAt          *time.Time       `json:"ends_at"`
	IsActive        *bool            `json:"is_active"`
}

// PromotionFilterRequest represents promotion list filters
type PromotionFilterRequest struct {
	ActiveOnly bool `form:"active_only"`
	Page       int  `form:"page"`
	PerPage    int  `form:"per_page"`
	Limit      int  `form:"limit"`
}
