package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
)

// ShipmentService tracks delivery progress. Shipments are created and removed
// by the invoice service; this service only moves their status forward.
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	now          func() time.Time
}

// NewShipmentService creates a new shipment service
func NewShipmentService(shipmentRepo repository.ShipmentRepository) *ShipmentService {
	return &ShipmentService{shipmentRepo: shipmentRepo, now: time.Now}
}

// ListShipments lists shipments, optionally filtered by status
func (s *ShipmentService) ListShipments(ctx context.Context, params *repository.ShipmentFilterParams) (*pagination.PaginatedResult[entity.Shipment], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	if params.Status != nil && !params.Status.IsValid() {
		return nil, apperror.NewFieldValidationError("status", "must be pending, shipped or delivered")
	}

	shipments, total, err := s.shipmentRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(shipments, pag), nil
}

// GetShipment retrieves a shipment by ID
func (s *ShipmentService) GetShipment(ctx context.Context, id uuid.UUID) (*entity.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, apperror.NewNotFoundError("Shipment")
	}
	return shipment, nil
}

// UpdateShipmentStatus moves a shipment to next and stamps the matching time.
// Skipping straight from pending to delivered also stamps ShippedAt.
func (s *ShipmentService) UpdateShipmentStatus(ctx context.Context, id uuid.UUID, next enum.ShipmentStatus) (*entity.Shipment, error) {
	if !next.IsValid() {
		return nil, apperror.NewFieldValidationError("status", "must be pending, shipped or delivered")
	}

	shipment, err := s.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status == next {
		return shipment, nil
	}
	if !shipment.Status.CanTransitionTo(next) {
		return nil, apperror.NewFieldValidationError("status", "cannot move from "+string(shipment.Status)+" to "+string(next))
	}

	now := s.now()
	switch next {
	case enum.ShipmentStatusShipped:
		shipment.ShippedAt = &now
	case enum.ShipmentStatusDelivered:
		if shipment.ShippedAt == nil {
			shipment.ShippedAt = &now
		}
		shipment.DeliveredAt = &now
	}
	shipment.Status = next

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}
