package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Invoice is a sale to a customer. It owns its line items and at most one shipment.
// Invoices are hard deleted so that their stock can be returned exactly once.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:char(36);primaryKey" json:"id"`
	InvoiceNo      string             `gorm:"size:100;uniqueIndex;not null" json:"invoice_no"`
	CustomerID     uuid.UUID          `gorm:"type:char(36);not null;index" json:"customer_id"`
	CreatorID      uuid.UUID          `gorm:"type:char(36);not null;index" json:"creator_id"`
	PromotionID    *uuid.UUID         `gorm:"type:char(36);index" json:"promotion_id,omitempty"`
	ExportedAt     time.Time          `gorm:"not null;index" json:"exported_at"`
	PaymentMethod  enum.PaymentMethod `gorm:"size:50;not null;index" json:"payment_method"`
	TaxRate        decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	SubTotal       decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	Total          decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"total"`
	IsPaid         bool               `gorm:"default:false" json:"is_paid"`
	IsDelivery     bool               `gorm:"default:false;index" json:"is_delivery"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`

	Customer  *Customer     `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Creator   *User         `gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT" json:"creator,omitempty"`
	Promotion *Promotion    `gorm:"foreignKey:PromotionID;constraint:OnDelete:SET NULL" json:"promotion,omitempty"`
	Items     []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:RESTRICT" json:"items"`
	Shipment  *Shipment     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:RESTRICT" json:"shipment,omitempty"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Invoice) TableName() string {
	return "invoices"
}

// QuantitiesByProduct sums the invoice's line quantities per product
func (i *Invoice) QuantitiesByProduct() map[uuid.UUID]int {
	return SumQuantities(i.Items)
}

// ApplyTotals copies computed totals onto the invoice
func (i *Invoice) ApplyTotals(t Totals) {
	i.SubTotal = t.SubTotal
	i.DiscountAmount = t.DiscountAmount
	i.TaxAmount = t.TaxAmount
	i.Total = t.Total
}

// InvoiceItem is one product line of an invoice, priced at the time of sale
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	InvoiceID uuid.UUID       `gorm:"type:char(36);not null;index" json:"invoice_id"`
	ProductID uuid.UUID       `gorm:"type:char(36);not null;index" json:"product_id"`
	LineNo    int             `gorm:"not null;default:0" json:"line_no"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Total     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	CreatedAt time.Time       `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// MarshalJSON renders the loaded product as a summary under "product"
func (it InvoiceItem) MarshalJSON() ([]byte, error) {
	type item InvoiceItem
	out := struct {
		item
		Product *ProductSummary `json:"product,omitempty"`
	}{item: item(it)}
	if it.Product != nil {
		summary := it.Product.Summary()
		out.Product = &summary
	}
	return json.Marshal(out)
}

// Totals is the money breakdown of an invoice
type Totals struct {
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals prices a set of lines: the promotion discount applies to the subtotal,
// and tax applies to what remains. Percentages are 0-100. Amounts are rounded to cents.
func ComputeTotals(items []InvoiceItem, taxRate, discountPercent decimal.Decimal) Totals {
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subTotal = subTotal.Round(2)

	discount := subTotal.Mul(discountPercent).Div(hundred).Round(2)
	taxable := subTotal.Sub(discount)
	tax := taxable.Mul(taxRate).Div(hundred).Round(2)

	return Totals{
		SubTotal:       subTotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// SumQuantities aggregates line quantities per product; repeated lines of a product add up
func SumQuantities(items []InvoiceItem) map[uuid.UUID]int {
	totals := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	return totals
}
