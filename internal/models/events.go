package models

import "time"

// Event types
const (
	EventTypeOrderPlaced = "ORDER_PLACED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published when the storefront submits an order.
// It carries everything the fan-out notifier needs to format a summary.
type OrderPlacedEvent struct {
	BaseEvent
	CustomerID int64       `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	Contact    string      `json:"contact"`
	Address    string      `json:"address"`
	Total      float64     `json:"total"`
}
