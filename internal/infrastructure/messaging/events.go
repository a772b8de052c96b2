package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an invoice lifecycle event
type EventType string

const (
	InvoiceCreated EventType = "invoice.created"
	InvoiceUpdated EventType = "invoice.updated"
	InvoiceDeleted EventType = "invoice.deleted"
)

// InvoiceEvent is published after an invoice transaction commits.
// StockChanges holds the signed stock delta applied per product.
type InvoiceEvent struct {
	Type         EventType         `json:"type"`
	InvoiceID    uuid.UUID         `json:"invoice_id"`
	InvoiceNo    string            `json:"invoice_no"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	ActorID      uuid.UUID         `json:"actor_id"`
	Total        decimal.Decimal   `json:"total"`
	IsDelivery   bool              `json:"is_delivery"`
	StockChanges map[uuid.UUID]int `json:"stock_changes,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}
