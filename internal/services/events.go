package services

import (
	"encoding/json"
	"time"

	"catalog/internal/models"
)

// Routing keys of catalog lifecycle events.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventProductRestored = "product.restored"
)

// EventPublisher sends an encoded event under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductEvent is the message body of a lifecycle event.
type ProductEvent struct {
	Event         string           `json:"event"`
	ProductID     string           `json:"productId"`
	Title         string           `json:"title"`
	Lifecycle     models.Lifecycle `json:"lifecycle"`
	StockQuantity int              `json:"stockQuantity"`
	OccurredAt    time.Time        `json:"occurredAt"`
}

// NewProductEvent describes p after the change named by event.
func NewProductEvent(event string, p *models.Product) ProductEvent {
	return ProductEvent{
		Event:         event,
		ProductID:     p.ID,
		Title:         p.Title,
		Lifecycle:     p.Lifecycle,
		StockQuantity: p.StockQuantity,
		OccurredAt:    time.Now().UTC(),
	}
}

// Encode marshals the event to JSON.
func (e ProductEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}
