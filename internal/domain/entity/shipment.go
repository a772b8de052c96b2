package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Shipment exists for an invoice exactly when the invoice is flagged for delivery
type Shipment struct {
	ID             uuid.UUID           `gorm:"type:char(36);primaryKey" json:"id"`
	InvoiceID      uuid.UUID           `gorm:"type:char(36);not null;uniqueIndex" json:"invoice_id"`
	RecipientName  string              `gorm:"size:255;not null" json:"recipient_name"`
	RecipientPhone string              `gorm:"size:50;not null" json:"recipient_phone"`
	Address        string              `gorm:"type:text;not null" json:"address"`
	Note           *string             `gorm:"type:text" json:"note,omitempty"`
	Status         enum.ShipmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = enum.ShipmentStatusPending
	}
	return nil
}

func (Shipment) TableName() string {
	return "shipments"
}
