package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockIn is a delivery of goods from a supplier. Approving it adds its quantities to stock.
type StockIn struct {
	ID           uuid.UUID          `gorm:"type:char(36);primaryKey" json:"id"`
	ReferenceNo  string             `gorm:"size:100;uniqueIndex;not null" json:"reference_no"`
	SupplierID   uuid.UUID          `gorm:"type:char(36);not null;index" json:"supplier_id"`
	CreatedByID  uuid.UUID          `gorm:"type:char(36);not null" json:"created_by"`
	ApprovedByID *uuid.UUID         `gorm:"type:char(36)" json:"approved_by,omitempty"`
	Date         time.Time          `gorm:"not null" json:"date"`
	Status       enum.StockInStatus `gorm:"default:0;index" json:"status"`
	TotalAmount  decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	Note         *string            `gorm:"type:text" json:"note,omitempty"`
	ApprovedAt   *time.Time         `json:"approved_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	Supplier  *Supplier     `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	CreatedBy *User         `gorm:"foreignKey:CreatedByID" json:"-"`
	Items     []StockInItem `gorm:"foreignKey:StockInID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (s *StockIn) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (StockIn) TableName() string {
	return "stock_ins"
}

func (s StockIn) IsPending() bool {
	return s.Status == enum.StockInStatusPending
}

type StockInItem struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	StockInID uuid.UUID       `gorm:"type:char(36);not null;index" json:"stock_in_id"`
	ProductID uuid.UUID       `gorm:"type:char(36);not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_cost"`
	Total     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
}

func (si *StockInItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

func (StockInItem) TableName() string {
	return "stock_in_items"
}
