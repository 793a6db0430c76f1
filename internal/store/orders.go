package store

import (
	"context"
	"fmt"
	"net/http"

	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

// OrderState owns the order history and the most recently created or
// viewed order. History and current have independent lifecycles. All
// totals and statuses come from the backend verbatim.
type OrderState struct {
	Orders  []models.Order
	Current *models.Order

	History       state.Lifecycle
	CurrentStatus state.Lifecycle
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// PlaceOrder creates an order from the current cart. On success the new
// order is prepended to history and becomes current.
func (s *Store) PlaceOrder(ctx context.Context, req models.CheckoutRequest) error {
	ctx, span := util.StartSpan(ctx, "Store.PlaceOrder")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opOrdersHistory, &s.orders.History)

	var order models.Order
	if err := s.gw.Send(ctx, http.MethodPost, "/orders", req, &order, true); err != nil {
		s.fail(opOrdersHistory, gen, &s.orders.History, err)
		return err
	}

	applied := s.apply(opOrdersHistory, gen, func() {
		s.orders.Orders = append([]models.Order{order}, s.orders.Orders...)
		s.orders.Current = &order
		s.orders.History.Succeed()
	})
	if !applied {
		return nil
	}

	util.OrdersPlacedTotal.Inc()
	var userID string
	if sess := s.sessions.Current(); sess != nil {
		userID = sess.ID
	}
	s.activity.OrderPlaced(ctx, userID, &order)
	s.notifier.Publish(notify.LevelSuccess, "Order placed successfully!")
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("total", order.TotalAmount.String()))
	return nil
}

// FetchOrders replaces the order history wholesale.
func (s *Store) FetchOrders(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchOrders")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opOrdersHistory, &s.orders.History)

	var orders []models.Order
	if err := s.gw.Send(ctx, http.MethodGet, "/orders", nil, &orders, true); err != nil {
		s.fail(opOrdersHistory, gen, &s.orders.History, err)
		return err
	}

	s.apply(opOrdersHistory, gen, func() {
		s.orders.Orders = orders
		s.orders.History.Succeed()
	})
	return nil
}

// FetchOrder sets the current order, independent of history.
func (s *Store) FetchOrder(ctx context.Context, orderID string) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchOrder")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opOrdersCurrent, &s.orders.CurrentStatus)

	var order models.Order
	if err := s.gw.Send(ctx, http.MethodGet, "/orders/"+orderID, nil, &order, true); err != nil {
		s.fail(opOrdersCurrent, gen, &s.orders.CurrentStatus, err)
		return err
	}

	s.apply(opOrdersCurrent, gen, func() {
		s.orders.Current = &order
		s.orders.CurrentStatus.Succeed()
	})
	return nil
}

// UpdateOrderStatus transitions an order's status (admin). On success
// the matching history entry is replaced by identity, and the current
// order is updated when it refers to the same order.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	ctx, span := util.StartSpan(ctx, "Store.UpdateOrderStatus")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opOrdersHistory, &s.orders.History)

	path := fmt.Sprintf("/orders/%s/status", orderID)
	var order models.Order
	if err := s.gw.Send(ctx, http.MethodPut, path, updateStatusRequest{Status: status}, &order, true); err != nil {
		s.fail(opOrdersHistory, gen, &s.orders.History, err)
		return err
	}

	applied := s.apply(opOrdersHistory, gen, func() {
		for i := range s.orders.Orders {
			if s.orders.Orders[i].ID == order.ID {
				updated := make([]models.Order, len(s.orders.Orders))
				copy(updated, s.orders.Orders)
				updated[i] = order
				s.orders.Orders = updated
				break
			}
		}
		if s.orders.Current != nil && s.orders.Current.ID == order.ID {
			s.orders.Current = &order
		}
		s.orders.History.Succeed()
	})

	if applied {
		s.activity.OrderStatusChanged(ctx, order.ID, order.Status)
	}
	return nil
}
