// Package notify raises fire-and-forget signals when an order's invoice
// number becomes available.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
)

// InvoiceEvent describes an order whose invoice number was just assigned.
type InvoiceEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	Brand         string          `json:"brand"`
	OrderType     string          `json:"order_type"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceNumber int32           `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
}

// Notifier delivers invoice events. Implementations must not block the
// caller on delivery failures; errors are logged, never returned.
type Notifier interface {
	InvoiceReady(ctx context.Context, ev InvoiceEvent)
}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) InvoiceReady(ctx context.Context, ev InvoiceEvent) {
	for _, n := range m {
		if n != nil {
			n.InvoiceReady(ctx, ev)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) InvoiceReady(context.Context, InvoiceEvent) {}

// EventFromOrder builds the event for a confirmed order. ok is false while
// the order has no invoice number.
func EventFromOrder(o database.Order) (InvoiceEvent, bool) {
	if !o.InvoiceNumber.Valid {
		return InvoiceEvent{}, false
	}
	total := decimal.Zero
	if v, err := o.OrderTotal.Value(); err == nil && v != nil {
		if d, err := decimal.NewFromString(v.(string)); err == nil {
			total = d
		}
	}
	return InvoiceEvent{
		OrderID:       o.ID,
		Brand:         o.Brand,
		OrderType:     o.OrderType,
		CustomerID:    o.CustomerID,
		InvoiceNumber: o.InvoiceNumber.Int32,
		Total:         total,
	}, true
}
