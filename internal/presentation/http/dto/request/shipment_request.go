package request

import "github.com/sangkips/salesdesk-api/internal/domain/enum"

// UpdateShipmentStatusRequest moves a shipment forward
type UpdateShipmentStatusRequest struct {
	Status enum.ShipmentStatus `json:"status" binding:"required,oneof=pending shipped delivered"`
}

// ShipmentFilterRequest represents shipment list filters
type ShipmentFilterRequest struct {
	Status  string `form:"status" binding:"omitempty,oneof=pending shipped delivered"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Limit   int    `form:"limit"`
}
