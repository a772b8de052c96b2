package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Kind classifies an AppError independently of its HTTP status
type Kind string

const (
	KindValidationFailed     Kind = "validation_failed"
	KindNotFound             Kind = "not_found"
	KindProductNotFound      Kind = "product_not_found"
	KindCreatorNotFound      Kind = "creator_not_found"
	KindInsufficientStock    Kind = "insufficient_stock"
	KindForeignKeyConstraint Kind = "foreign_key_constraint"
	KindTransactionTimeout   Kind = "transaction_timeout"
	KindConflict             Kind = "conflict"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details interface{}  `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockShortage describes why a stock check failed
type StockShortage struct {
	ProductID uuid.UUID `json:"product_id"`
	Product   string    `json:"product"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrTransactionTimeout = &AppError{
		Code:    http.StatusGatewayTimeout,
		Kind:    KindTransactionTimeout,
		Message: "The operation took too long and was rolled back, please retry",
	}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidationFailed,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError creates a validation error for a single field
func NewFieldValidationError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewProductNotFoundError reports a line item pointing at an unknown product
func NewProductNotFoundError(id uuid.UUID) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindProductNotFound,
		Message: fmt.Sprintf("Product %s not found", id),
		Details: map[string]uuid.UUID{"product_id": id},
	}
}

// NewCreatorNotFoundError reports that the invoice creator could not be resolved
func NewCreatorNotFoundError(ref string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindCreatorNotFound,
		Message: fmt.Sprintf("Creator %s not found", ref),
	}
}

// NewInsufficientStockError reports a requested quantity above the available stock
func NewInsufficientStockError(productID uuid.UUID, product string, available, requested int) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", product, available, requested),
		Details: StockShortage{
			ProductID: productID,
			Product:   product,
			Available: available,
			Requested: requested,
		},
	}
}

// NewForeignKeyError reports a delete blocked by dependent records
func NewForeignKeyError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindForeignKeyConstraint,
		Message: resource + " is still referenced by other records, remove them first",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasKind reports whether err is an AppError of the given kind
func HasKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError converts an error to AppError if possible.
// Unknown errors are reported as a generic internal error.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
