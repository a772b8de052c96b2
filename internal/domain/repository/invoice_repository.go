package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID returns the invoice with customer, creator, promotion, items with products and shipment
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetForUpdate locks the invoice row and returns it without associations
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// UpdateHeader saves the invoice columns without touching associations
	UpdateHeader(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// DailySales groups invoices exported in [from, to) by UTC day
	DailySales(ctx context.Context, from, to time.Time) ([]DailySales, error)
}

// DailySales is one day of invoiced revenue
type DailySales struct {
	Day      time.Time
	Invoices int64
	Revenue  decimal.Decimal
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	CustomerID    *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentMethod *enum.PaymentMethod
	IsPaid        *bool
	// UnshippedOnly keeps delivery invoices whose shipment is still pending
	UnshippedOnly bool
}

// InvoiceItemRepository defines the interface for invoice line item operations
type InvoiceItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.InvoiceItem) error
	GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error)
	DeleteByInvoiceID(ctx context.Context, invoiceID uuid.UUID) error
}

// ShipmentRepository defines the interface for shipment data operations
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *entity.Shipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Shipment, error)
	GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*entity.Shipment, error)
	Update(ctx context.Context, shipment *entity.Shipment) error
	DeleteByInvoiceID(ctx context.Context, invoiceID uuid.UUID) error
	List(ctx context.Context, params *ShipmentFilterParams) ([]entity.Shipment, int64, error)
}

type ShipmentFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.ShipmentStatus
}
