package request

import "github.com/sangkips/salesdesk-api/internal/domain/enum"

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
	TaxPin  *string `json:"tax_pin" binding:"omitempty,max=50"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
	TaxPin  *string `json:"tax_pin" binding:"omitempty,max=50"`
}

// CreateSupplierRequest represents a supplier creation request
type CreateSupplierRequest struct {
	Name          string            `json:"name" binding:"required,min=2,max=255"`
	Email         *string           `json:"email" binding:"omitempty,email"`
	Phone         *string           `json:"phone" binding:"omitempty,max=50"`
	Address       *string           `json:"address"`
	ShopName      *string           `json:"shop_name" binding:"omitempty,max=255"`
	Type          enum.SupplierType `json:"type"`
	BankName      *string           `json:"bank_name" binding:"omitempty,max=255"`
	AccountNumber *string           `json:"account_number" binding:"omitempty,max=100"`
}

// UpdateSupplierRequest represents a supplier update request
type UpdateSupplierRequest struct {
	Name          *string            `json:"name" binding:"omitempty,min=2,max=255"`
	Email         *string            `json:"email" binding:"omitempty,email"`
	Phone         *string            `json:"phone" binding:"omitempty,max=50"`
	Address       *string            `json:"address"`
	ShopName      *string            `json:"shop_name" binding:"omitempty,max=255"`
	Type          *enum.SupplierType `json:"type"`
	BankName      *string            `json:"bank_name" binding:"omitempty,max=255"`
	AccountNumber *string            `json:"account_number" binding:"omitempty,max=100"`
}

// ListRequest holds the common search and page parameters
type ListRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Limit   int    `form:"limit"`
}
