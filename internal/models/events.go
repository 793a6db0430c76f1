package models

import "time"

// Activity event types published to the optional activity stream.
const (
	EventTypeSessionStarted     = "SESSION_STARTED"
	EventTypeSessionEnded       = "SESSION_ENDED"
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all activity events.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionStartedEvent published after a successful login or registration.
type SessionStartedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// SessionEndedEvent published on logout or a credential rejection.
type SessionEndedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// OrderPlacedEvent published after a successful checkout.
type OrderPlacedEvent struct {
	BaseEvent
	UserID      string `json:"user_id"`
	OrderID     string `json:"order_id"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

// OrderStatusChangedEvent published after an admin status transition.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
