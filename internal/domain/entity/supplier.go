package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Supplier is the source of stock-ins
type Supplier struct {
	ID            uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	Name          string            `gorm:"size:255;not null" json:"name"`
	Email         *string           `gorm:"size:255" json:"email,omitempty"`
	Phone         *string           `gorm:"size:50" json:"phone,omitempty"`
	Address       *string           `gorm:"type:text" json:"address,omitempty"`
	ShopName      *string           `gorm:"size:255" json:"shop_name,omitempty"`
	Type          enum.SupplierType `gorm:"size:50;default:'distributor'" json:"type"`
	BankName      *string           `gorm:"size:255" json:"bank_name,omitempty"`
	AccountNumber *string           `gorm:"size:100" json:"account_number,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Supplier) TableName() string {
	return "suppliers"
}
