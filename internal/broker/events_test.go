package broker

import (
	"context"
	"errors"
	"testing"

	"storefront-client/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingWriter struct {
	keys   []string
	events []interface{}
	err    error
}

func (c *capturingWriter) PublishEvent(ctx context.Context, key string, event interface{}) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.events = append(c.events, event)
	return nil
}

func TestNilPublisherIsInert(t *testing.T) {
	var ap *ActivityPublisher

	ctx := context.Background()
	ap.SessionStarted(ctx, "u1", models.RoleCustomer)
	ap.SessionEnded(ctx, "u1", "logout")
	ap.OrderPlaced(ctx, "u1", &models.Order{ID: "o1"})
	ap.OrderStatusChanged(ctx, "o1", models.OrderStatusShipped)
}

func TestActivityEventsCarryIdentityAndKeys(t *testing.T) {
	writer := &capturingWriter{}
	ap := &ActivityPublisher{producer: writer, logger: zap.NewNop()}

	ctx := context.Background()
	ap.SessionStarted(ctx, "u1", models.RoleCustomer)
	ap.SessionEnded(ctx, "u1", "credential_rejected")
	ap.OrderPlaced(ctx, "u1", &models.Order{
		ID:          "o1",
		TotalAmount: decimal.NewFromFloat(42.5),
		Items:       []models.CartItem{{Quantity: 2}},
	})
	ap.OrderStatusChanged(ctx, "o1", models.OrderStatusShipped)

	require.Len(t, writer.events, 4)
	assert.Equal(t, []string{"user-u1", "user-u1", "order-o1", "order-o1"}, writer.keys)

	started := writer.events[0].(*models.SessionStartedEvent)
	assert.Equal(t, models.EventTypeSessionStarted, started.EventType)
	assert.Equal(t, "u1", started.UserID)
	assert.Equal(t, models.RoleCustomer, started.Role)
	assert.NotEmpty(t, started.EventID)
	assert.False(t, started.Timestamp.IsZero())

	ended := writer.events[1].(*models.SessionEndedEvent)
	assert.Equal(t, "credential_rejected", ended.Reason)

	placed := writer.events[2].(*models.OrderPlacedEvent)
	assert.Equal(t, "o1", placed.OrderID)
	assert.Equal(t, "42.5", placed.TotalAmount)
	assert.Equal(t, 1, placed.ItemCount)

	changed := writer.events[3].(*models.OrderStatusChangedEvent)
	assert.Equal(t, models.OrderStatusShipped, changed.Status)
}

func TestPublishFailureNeverSurfaces(t *testing.T) {
	writer := &capturingWriter{err: errors.New("broker unreachable")}
	ap := &ActivityPublisher{producer: writer, logger: zap.NewNop()}

	// Publishing has no error return; a failed write is logged and the
	// caller's flow continues.
	ap.OrderPlaced(context.Background(), "u1", &models.Order{ID: "o1"})
	assert.Empty(t, writer.events)
}
