package broker

import (
	"context"
	"fmt"
	"time"

	"storefront-client/internal/models"
	"storefront-client/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventWriter is the producer surface the publisher needs; it lets the
// publishing contract be exercised without a running broker.
type eventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// ActivityPublisher publishes storefront activity events to the
// configured stream. A nil publisher is valid and publishes nothing, so
// callers never branch on whether the stream is enabled.
type ActivityPublisher struct {
	producer eventWriter
	logger   *zap.Logger
}

// NewActivityPublisher creates a publisher on top of a Kafka producer.
func NewActivityPublisher(producer *Producer) *ActivityPublisher {
	return &ActivityPublisher{
		producer: producer,
		logger:   util.GetLogger(),
	}
}

func baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// SessionStarted publishes a SESSION_STARTED event.
func (ap *ActivityPublisher) SessionStarted(ctx context.Context, userID, role string) {
	if ap == nil {
		return
	}
	event := &models.SessionStartedEvent{
		BaseEvent: baseEvent(models.EventTypeSessionStarted),
		UserID:    userID,
		Role:      role,
	}
	ap.publish(ctx, "user-"+userID, event)
}

// SessionEnded publishes a SESSION_ENDED event.
func (ap *ActivityPublisher) SessionEnded(ctx context.Context, userID, reason string) {
	if ap == nil {
		return
	}
	event := &models.SessionEndedEvent{
		BaseEvent: baseEvent(models.EventTypeSessionEnded),
		UserID:    userID,
		Reason:    reason,
	}
	ap.publish(ctx, "user-"+userID, event)
}

// OrderPlaced publishes an ORDER_PLACED event.
func (ap *ActivityPublisher) OrderPlaced(ctx context.Context, userID string, order *models.Order) {
	if ap == nil {
		return
	}
	event := &models.OrderPlacedEvent{
		BaseEvent:   baseEvent(models.EventTypeOrderPlaced),
		UserID:      userID,
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount.String(),
		ItemCount:   len(order.Items),
	}
	ap.publish(ctx, fmt.Sprintf("order-%s", order.ID), event)
}

// OrderStatusChanged publishes an ORDER_STATUS_CHANGED event.
func (ap *ActivityPublisher) OrderStatusChanged(ctx context.Context, orderID, status string) {
	if ap == nil {
		return
	}
	event := &models.OrderStatusChangedEvent{
		BaseEvent: baseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   orderID,
		Status:    status,
	}
	ap.publish(ctx, fmt.Sprintf("order-%s", orderID), event)
}

// publish writes one event; failures are logged, never surfaced. The
// activity stream must not affect the user-facing flow.
func (ap *ActivityPublisher) publish(ctx context.Context, key string, event interface{}) {
	if err := ap.producer.PublishEvent(ctx, key, event); err != nil {
		ap.logger.Warn("Failed to publish activity event",
			zap.String("key", key),
			zap.Error(err))
	}
}
