package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// PromotionAction says what an update does with the invoice's promotion
type PromotionAction int

const (
	PromotionKeep PromotionAction = iota
	PromotionClear
	PromotionSet
)

// PromotionPatch is the tri-state promotion field of an update
type PromotionPatch struct {
	Action PromotionAction
	ID     uuid.UUID
}

// ShipmentPatch carries the recipient fields of an update. Nil fields keep the stored value.
type ShipmentPatch struct {
	RecipientName  *string
	RecipientPhone *string
	Address        *string
	Note           *string
}

// InvoicePatch is a partial invoice update. Nil fields are left untouched.
type InvoicePatch struct {
	CustomerID    *uuid.UUID
	Promotion     PromotionPatch
	ExportedAt    *time.Time
	PaymentMethod *enum.PaymentMethod
	TaxRate       *decimal.Decimal
	Total         *decimal.Decimal
	IsPaid        *bool
	IsDelivery    *bool
	Shipment      *ShipmentPatch
	Items         *[]InvoiceItemInput
}

// ShipmentAction is the shipment write an update needs
type ShipmentAction int

const (
	ShipmentNone ShipmentAction = iota
	ShipmentUpsert
	ShipmentDelete
)

// PatchResult is the merged state of an invoice after a patch
type PatchResult struct {
	Invoice        entity.Invoice
	ItemsReplaced  bool
	ShipmentAction ShipmentAction
	// Shipment is the merged shipment to write when ShipmentAction is ShipmentUpsert
	Shipment *entity.Shipment
}

// ApplyInvoicePatch merges patch into a copy of current without touching storage.
// discountPercent is the percentage of the promotion the invoice ends up with.
func ApplyInvoicePatch(current *entity.Invoice, patch *InvoicePatch, discountPercent decimal.Decimal) (*PatchResult, error) {
	merged := *current
	merged.Customer = nil
	merged.Creator = nil
	merged.Promotion = nil
	merged.Shipment = nil

	recompute := false

	if patch.CustomerID != nil {
		merged.CustomerID = *patch.CustomerID
	}
	if patch.ExportedAt != nil {
		merged.ExportedAt = *patch.ExportedAt
	}
	if patch.PaymentMethod != nil {
		merged.PaymentMethod = *patch.PaymentMethod
	}
	if patch.IsPaid != nil {
		merged.IsPaid = *patch.IsPaid
	}
	if patch.IsDelivery != nil {
		merged.IsDelivery = *patch.IsDelivery
	}
	if patch.TaxRate != nil && !patch.TaxRate.Equal(current.TaxRate) {
		merged.TaxRate = *patch.TaxRate
		recompute = true
	}

	switch patch.Promotion.Action {
	case PromotionClear:
		if current.PromotionID != nil {
			recompute = true
		}
		merged.PromotionID = nil
	case PromotionSet:
		if current.PromotionID == nil || *current.PromotionID != patch.Promotion.ID {
			recompute = true
		}
		id := patch.Promotion.ID
		merged.PromotionID = &id
	}

	result := &PatchResult{}

	if patch.Items != nil {
		merged.Items = buildInvoiceItems(current.ID, *patch.Items)
		result.ItemsReplaced = true
		recompute = true
	}

	if recompute {
		merged.ApplyTotals(entity.ComputeTotals(merged.Items, merged.TaxRate, discountPercent))
	}
	if patch.Total != nil {
		merged.Total = *patch.Total
	}

	if merged.IsDelivery {
		shipment, err := mergeShipment(current, patch.Shipment)
		if err != nil {
			return nil, err
		}
		result.ShipmentAction = ShipmentUpsert
		result.Shipment = shipment
	} else if current.Shipment != nil {
		result.ShipmentAction = ShipmentDelete
	}

	result.Invoice = merged
	return result, nil
}

func mergeShipment(current *entity.Invoice, patch *ShipmentPatch) (*entity.Shipment, error) {
	shipment := &entity.Shipment{InvoiceID: current.ID}
	if current.Shipment != nil {
		*shipment = *current.Shipment
	}

	if patch != nil {
		if patch.RecipientName != nil {
			shipment.RecipientName = strings.TrimSpace(*patch.RecipientName)
		}
		if patch.RecipientPhone != nil {
			shipment.RecipientPhone = strings.TrimSpace(*patch.RecipientPhone)
		}
		if patch.Address != nil {
			shipment.Address = strings.TrimSpace(*patch.Address)
		}
		if patch.Note != nil {
			note := *patch.Note
			shipment.Note = &note
		}
	}

	if errs := validateRecipient(shipment.RecipientName, shipment.RecipientPhone, shipment.Address); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return shipment, nil
}

func validateRecipient(name, phone, address string) []apperror.FieldError {
	var errs []apperror.FieldError
	if name == "" {
		errs = append(errs, apperror.FieldError{Field: "recipient_name", Message: "is required for delivery"})
	}
	if phone == "" {
		errs = append(errs, apperror.FieldError{Field: "recipient_phone", Message: "is required for delivery"})
	}
	if address == "" {
		errs = append(errs, apperror.FieldError{Field: "address", Message: "is required for delivery"})
	}
	return errs
}

// buildInvoiceItems prices the input lines in request order
func buildInvoiceItems(invoiceID uuid.UUID, inputs []InvoiceItemInput) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, entity.InvoiceItem{
			InvoiceID: invoiceID,
			ProductID: in.ProductID,
			LineNo:    i + 1,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Total:     in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2),
		})
	}
	return items
}
