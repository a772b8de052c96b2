package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item. Quantity is the on-hand stock and never goes negative.
type Product struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Code          string          `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Quantity      int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	QuantityAlert int             `gorm:"default:0" json:"quantity_alert"`
	Price         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"price"`
	Cost          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"cost"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.QuantityAlert
}

// ProductSummary is the product view embedded in invoice line items
type ProductSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

func (p *Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Code: p.Code}
}
