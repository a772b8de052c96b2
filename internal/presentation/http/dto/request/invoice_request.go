package request

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one line of an invoice body
type InvoiceItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RecipientRequest holds the delivery fields of an invoice
type RecipientRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
	Note    *string `json:"note"`
}

// CreateInvoiceRequest represents an invoice creation request.
// CreatorName attributes the invoice to another employee and is only honoured
// for callers allowed to manage users.
type CreateInvoiceRequest struct {
	CustomerID    uuid.UUID            `json:"customer_id" binding:"required"`
	CreatorName   string               `json:"creator_name" binding:"omitempty,max=255"`
	PromotionID   *uuid.UUID           `json:"promotion_id"`
	ExportedAt    *time.Time           `json:"exported_at"`
	PaymentMethod enum.PaymentMethod   `json:"payment_method" binding:"required,payment_method"`
	TaxRate       decimal.Decimal      `json:"tax_rate"`
	IsPaid        bool                 `json:"is_paid"`
	IsDelivery    bool                 `json:"is_delivery"`
	Recipient     *RecipientRequest    `json:"recipient"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// NullableUUID tells an absent field apart from an explicit null
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON only runs when the key is present in the body
func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// UpdateInvoiceRequest represents a partial invoice update. Absent fields keep
// their stored value; "promotion_id": null removes the promotion.
type UpdateInvoiceRequest struct {
	CustomerID    *uuid.UUID            `json:"customer_id"`
	PromotionID   NullableUUID          `json:"promotion_id"`
	ExportedAt    *time.Time            `json:"exported_at"`
	PaymentMethod *enum.PaymentMethod   `json:"payment_method" binding:"omitempty,payment_method"`
	TaxRate       *decimal.Decimal      `json:"tax_rate"`
	Total         *decimal.Decimal      `json:"total"`
	IsPaid        *bool                 `json:"is_paid"`
	IsDelivery    *bool                 `json:"is_delivery"`
	Recipient     *RecipientRequest     `json:"recipient"`
	Items         *[]InvoiceItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

// InvoiceFilterRequest represents invoice list filters
type InvoiceFilterRequest struct {
	Search        string `form:"search"`
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,payment_method"`
	IsPaid        *bool  `form:"is_paid"`
	UnshippedOnly bool   `form:"unshipped_only"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
	Limit         int    `form:"limit"`
}
