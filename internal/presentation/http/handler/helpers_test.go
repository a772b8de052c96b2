package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
)

func TestParseDate(t *testing.T) {
	start, err := parseDate("start_date", "2026-03-14", false)
	if err != nil || !start.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, %v", start, err)
	}

	// a plain end date includes the whole day
	end, err := parseDate("end_date", "2026-03-14", true)
	if err != nil || !end.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, %v", end, err)
	}

	exact, err := parseDate("end_date", "2026-03-14T10:00:00Z", true)
	if err != nil || !exact.Equal(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v, %v", exact, err)
	}

	if none, err := parseDate("start_date", "", false); none != nil || err != nil {
		t.Errorf("empty = %v, %v", none, err)
	}

	_, err = parseDate("start_date", "14/03/2026", false)
	if !apperror.HasKind(err, apperror.KindValidationFailed) {
		t.Errorf("bad date error = %v", err)
	}
}

func TestParseOptionalID(t *testing.T) {
	id := uuid.New()
	got, err := parseOptionalID("customer_id", id.String())
	if err != nil || got == nil || *got != id {
		t.Errorf("got %v, %v", got, err)
	}
	if _, err := parseOptionalID("customer_id", "nope"); err == nil {
		t.Error("expected error for invalid UUID")
	}
}

func TestPageParamsDefaults(t *testing.T) {
	p := pageParams(0, 0, 0)
	if p.Page != 1 || p.PerPage != 15 {
		t.Errorf("defaults = %+v", p)
	}
	if p := pageParams(2, 500, 0); p.PerPage != 100 {
		t.Errorf("per page cap = %d", p.PerPage)
	}
}

func TestHasPermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if HasPermission(c, "manage-users") {
		t.Error("anonymous context has a permission")
	}
	c.Set(middleware.ContextUserPermissions, []string{"manage-invoices", "manage-users"})
	if !HasPermission(c, "manage-users") {
		t.Error("permission not found")
	}
	if GetUserID(c) != nil {
		t.Error("user id should be unset")
	}
}
