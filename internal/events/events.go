// Package events publishes order lifecycle changes so kitchen displays and
// other consumers can follow orders without polling the API.
package events

import (
	"context"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	OrderItemsAdded    EventType = "order.items_added"
	OrderItemRemoved   EventType = "order.item_removed"
	OrderDeleted       EventType = "order.deleted"
)

type OrderEvent struct {
	Event      EventType          `json:"event"`
	OrderID    uint               `json:"order_id"`
	TableID    uint               `json:"table_id"`
	Status     models.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func NewOrderEvent(t EventType, o *models.Order) OrderEvent {
	return OrderEvent{
		Event:      t,
		OrderID:    o.ID,
		TableID:    o.TableID,
		Status:     o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// RoutingKey is "orders.<status>", so a kitchen queue can bind to
// "orders.pending" and "orders.preparing" only.
func (e OrderEvent) RoutingKey() string {
	return "orders." + string(e.Status)
}

type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
	Close() error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
