package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salesdesk-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).
		Preload("Customer").
		Preload("Creator").
		Preload("Promotion").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Items.Product").
		Preload("Shipment").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) UpdateHeader(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&entity.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{})

	if params.Search != "" {
		query = query.Where(containsCI("invoice_no"), likePattern(params.Search))
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.StartDate != nil {
		query = query.Where("exported_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("exported_at < ?", *params.EndDate)
	}
	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}
	if params.IsPaid != nil {
		query = query.Where("is_paid = ?", *params.IsPaid)
	}
	if params.UnshippedOnly {
		query = query.Where("is_delivery = ?", true).
			Where("EXISTS (SELECT 1 FROM shipments WHERE shipments.invoice_id = invoices.id AND shipments.status = ?)",
				enum.ShipmentStatusPending)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Preload("Creator").
		Preload("Promotion").
		Preload("Shipment").
		Order("exported_at DESC, id DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) DailySales(ctx context.Context, from, to time.Time) ([]domainRepo.DailySales, error) {
	var rows []domainRepo.DailySales
	err := conn(ctx, r.db).Model(&entity.Invoice{}).
		Select("DATE(exported_at) AS day, COUNT(*) AS invoices, COALESCE(SUM(total), 0) AS revenue").
		Where("exported_at >= ? AND exported_at < ?", from, to).
		Group("DATE(exported_at)").
		Order("day").
		Scan(&rows).Error
	return rows, err
}

type invoiceItemRepository struct {
	db *gorm.DB
}

func NewInvoiceItemRepository(db *gorm.DB) domainRepo.InvoiceItemRepository {
	return &invoiceItemRepository{db: db}
}

func (r *invoiceItemRepository) CreateBatch(ctx context.Context, items []entity.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(ctx, r.db).Omit(clause.Associations).Create(&items).Error
}

func (r *invoiceItemRepository) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	var items []entity.InvoiceItem
	err := conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("line_no ASC").
		Find(&items).Error
	return items, err
}

func (r *invoiceItemRepository) DeleteByInvoiceID(ctx context.Context, invoiceID uuid.UUID) error {
	return translate(conn(ctx, r.db).Where("invoice_id = ?", invoiceID).Delete(&entity.InvoiceItem{}).Error)
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) domainRepo.ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) Create(ctx context.Context, shipment *entity.Shipment) error {
	return conn(ctx, r.db).Create(shipment).Error
}

func (r *shipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Shipment, error) {
	var shipment entity.Shipment
	err := conn(ctx, r.db).First(&shipment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shipment, err
}

func (r *shipmentRepository) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*entity.Shipment, error) {
	var shipment entity.Shipment
	err := conn(ctx, r.db).First(&shipment, "invoice_id = ?", invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shipment, err
}

func (r *shipmentRepository) Update(ctx context.Context, shipment *entity.Shipment) error {
	return conn(ctx, r.db).Save(shipment).Error
}

func (r *shipmentRepository) DeleteByInvoiceID(ctx context.Context, invoiceID uuid.UUID) error {
	return translate(conn(ctx, r.db).Where("invoice_id = ?", invoiceID).Delete(&entity.Shipment{}).Error)
}

func (r *shipmentRepository) List(ctx context.Context, params *domainRepo.ShipmentFilterParams) ([]entity.Shipment, int64, error) {
	var shipments []entity.Shipment
	var total int64

	query := conn(ctx, r.db).Model(&entity.Shipment{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&shipments).Error

	return shipments, total, err
}
