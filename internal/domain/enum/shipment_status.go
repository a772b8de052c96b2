package enum

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusShipped, ShipmentStatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo reports whether a shipment may move from s to next.
// Status only moves forward: pending, shipped, delivered.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	switch s {
	case ShipmentStatusPending:
		return next == ShipmentStatusShipped || next == ShipmentStatusDelivered
	case ShipmentStatusShipped:
		return next == ShipmentStatusDelivered
	}
	return false
}
