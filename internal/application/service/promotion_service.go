package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PromotionService handles promotion-related operations
type PromotionService struct {
	promotionRepo repository.PromotionRepository
}

// NewPromotionService creates a new promotion service
func NewPromotionService(promotionRepo repository.PromotionRepository) *PromotionService {
	return &PromotionService{promotionRepo: promotionRepo}
}

// CreatePromotionInput represents the create promotion input
type CreatePromotionInput struct {
	Name            string
	Code            string
	DiscountPercent decimal.Decimal
	StartsAt        *time.Time
	EndsAt          *time.Time
	IsActive        *bool
}

// CreatePromotion creates a new promotion
func (s *PromotionService) CreatePromotion(ctx context.Context, input *CreatePromotionInput) (*entity.Promotion, error) {
	promotion := &entity.Promotion{
		Name:            strings.TrimSpace(input.Name),
		Code:            strings.ToUpper(strings.TrimSpace(input.Code)),
		DiscountPercent: input.DiscountPercent,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
		IsActive:        true,
	}
	if input.IsActive != nil {
		promotion.IsActive = *input.IsActive
	}

	if errs := validatePromotion(promotion); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	existing, err := s.promotionRepo.GetByCode(ctx, promotion.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Promotion code already exists")
	}

	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// GetPromotion retrieves a promotion by ID
func (s *PromotionService) GetPromotion(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, apperror.NewNotFoundError("Promotion")
	}
	return promotion, nil
}

// ListPromotions lists promotions, optionally only the active ones
func (s *PromotionService) ListPromotions(ctx context.Context, params *pagination.PaginationParams, activeOnly bool) (*pagination.PaginatedResult[entity.Promotion], error) {
	params.Validate()

	promotions, total, err := s.promotionRepo.List(ctx, params, activeOnly)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(promotions, pag), nil
}

// UpdatePromotionInput represents the update promotion input
type UpdatePromotionInput struct {
	ID              uuid.UUID
	Name            *string
	Code            *string
	DiscountPercent *decimal.Decimal
	StartsAt        *time.Time
	EndsAt          *time.Time
	IsActive        *bool
}

// UpdatePromotion updates a promotion. Invoices already issued keep their totals.
func (s *PromotionService) UpdatePromotion(ctx context.Context, input *UpdatePromotionInput) (*entity.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, apperror.NewNotFoundError("Promotion")
	}

	if input.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.Code))
		if code != promotion.Code {
			existing, err := s.promotionRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != promotion.ID {
				return nil, apperror.NewConflictError("Promotion code already exists")
			}
			promotion.Code = code
		}
	}
	if input.Name != nil {
		promotion.Name = strings.TrimSpace(*input.Name)
	}
	if input.DiscountPercent != nil {
		promotion.DiscountPercent = *input.DiscountPercent
	}
	if input.StartsAt != nil {
		promotion.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		promotion.EndsAt = input.EndsAt
	}
	if input.IsActive != nil {
		promotion.IsActive = *input.IsActive
	}

	if errs := validatePromotion(promotion); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if err := s.promotionRepo.Update(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// DeletePromotion deletes a promotion that no invoice references
func (s *PromotionService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if promotion == nil {
		return apperror.NewNotFoundError("Promotion")
	}

	return translateDeleteError(s.promotionRepo.Delete(ctx, id), "Promotion")
}

func validatePromotion(p *entity.Promotion) []apperror.FieldError {
	var errs []apperror.FieldError
	if p.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if p.Code == "" {
		errs = append(errs, apperror.FieldError{Field: "code", Message: "is required"})
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(hundred) {
		errs = append(errs, apperror.FieldError{Field: "discount_percent", Message: "must be between 0 and 100"})
	}
	if p.StartsAt != nil && p.EndsAt != nil && !p.StartsAt.Before(*p.EndsAt) {
		errs = append(errs, apperror.FieldError{Field: "ends_at", Message: "must be after starts_at"})
	}
	return errs
}
