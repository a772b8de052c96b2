package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestInsufficientStockCarriesShortage(t *testing.T) {
	id := uuid.New()
	err := NewInsufficientStockError(id, "Blue Pen", 5, 1000)

	if err.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", err.Code)
	}
	if err.Kind != KindInsufficientStock {
		t.Errorf("expected kind %s, got %s", KindInsufficientStock, err.Kind)
	}

	shortage, ok := err.Details.(StockShortage)
	if !ok {
		t.Fatalf("expected StockShortage details, got %T", err.Details)
	}
	if shortage.ProductID != id || shortage.Available != 5 || shortage.Requested != 1000 {
		t.Errorf("unexpected shortage: %+v", shortage)
	}
	if err.Error() != "Insufficient stock for Blue Pen: available 5, requested 1000" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestHasKindThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create invoice: %w", NewCreatorNotFoundError("Jane Doe"))

	if !HasKind(wrapped, KindCreatorNotFound) {
		t.Error("expected wrapped error to keep its kind")
	}
	if HasKind(wrapped, KindNotFound) {
		t.Error("creator_not_found must not match not_found")
	}
	if HasKind(errors.New("plain"), KindNotFound) {
		t.Error("plain errors have no kind")
	}
}

func TestGetAppErrorHidesInternalDetails(t *testing.T) {
	appErr := GetAppError(errors.New("pq: connection refused on 10.0.0.3"))

	if appErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", appErr.Code)
	}
	if appErr.Message != "Internal server error" {
		t.Errorf("internal message leaked: %q", appErr.Message)
	}
}

func TestValidationErrorKind(t *testing.T) {
	err := NewFieldValidationError("items", "at least one item is required")

	if err.Kind != KindValidationFailed {
		t.Errorf("expected validation kind, got %s", err.Kind)
	}
	if len(err.Errors) != 1 || err.Errors[0].Field != "items" {
		t.Errorf("unexpected field errors: %+v", err.Errors)
	}
}
