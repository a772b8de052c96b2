package enum

import (
	"encoding/json"
	"testing"
)

func TestPaymentMethodIsValid(t *testing.T) {
	if !PaymentMethodMobileMoney.IsValid() {
		t.Error("mobile_money should be valid")
	}
	if PaymentMethod("cheque").IsValid() {
		t.Error("cheque is not a supported method")
	}
}

func TestShipmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ShipmentStatus
		ok       bool
	}{
		{ShipmentStatusPending, ShipmentStatusShipped, true},
		{ShipmentStatusPending, ShipmentStatusDelivered, true},
		{ShipmentStatusShipped, ShipmentStatusDelivered, true},
		{ShipmentStatusShipped, ShipmentStatusPending, false},
		{ShipmentStatusDelivered, ShipmentStatusShipped, false},
		{ShipmentStatusPending, ShipmentStatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestStockInStatusJSON(t *testing.T) {
	data, err := json.Marshal(StockInStatusApproved)
	if err != nil || string(data) != `"Approved"` {
		t.Fatalf("marshal: %s %v", data, err)
	}

	var s StockInStatus
	if err := json.Unmarshal([]byte(`"Approved"`), &s); err != nil || s != StockInStatusApproved {
		t.Errorf("unmarshal string: %v %v", s, err)
	}
	if err := json.Unmarshal([]byte(`0`), &s); err != nil || s != StockInStatusPending {
		t.Errorf("unmarshal int: %v %v", s, err)
	}
	if err := json.Unmarshal([]byte(`"Lost"`), &s); err == nil {
		t.Error("expected error for unknown status")
	}
}
