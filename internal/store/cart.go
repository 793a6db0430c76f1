package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned for quantities below one; the request
// never reaches the network and state is unchanged.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartState caches the last cart snapshot returned by the backend. The
// server is the source of truth: every mutation is a round trip and the
// item collection is replaced wholesale on success.
type CartState struct {
	Items     []models.CartItem
	Lifecycle state.Lifecycle
}

// TotalPrice sums price times quantity over all lines. Always computed
// from current state, never cached.
func (c CartState) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount sums the quantities over all lines.
func (c CartState) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// cartPayload is the backend's cart snapshot shape.
type cartPayload struct {
	Items []models.CartItem `json:"items"`
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// FetchCart loads the authenticated user's cart.
func (s *Store) FetchCart(ctx context.Context) error {
	return s.cartRoundTrip(ctx, "fetch", http.MethodGet, "/cart", nil, "")
}

// AddToCart adds quantity of a product. The backend enforces the stock
// upper bound; the client only rejects quantities below one.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	req := addToCartRequest{ProductID: productID, Quantity: quantity}
	return s.cartRoundTrip(ctx, "add", http.MethodPost, "/cart/add", req, "Product added to cart!")
}

// UpdateCartQuantity sets the quantity of an existing line.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	req := updateQuantityRequest{Quantity: quantity}
	path := fmt.Sprintf("/cart/update/%s", productID)
	return s.cartRoundTrip(ctx, "update", http.MethodPut, path, req, "Cart updated successfully!")
}

// RemoveFromCart removes a line.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	path := fmt.Sprintf("/cart/remove/%s", productID)
	return s.cartRoundTrip(ctx, "remove", http.MethodDelete, path, nil, "Cart updated successfully!")
}

// ClearCart empties the cart on the backend.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.cartRoundTrip(ctx, "clear", http.MethodDelete, "/cart/clear", nil, "Cart updated successfully!")
}

// cartRoundTrip runs one pessimistic cart operation: nothing changes
// locally until the backend confirms, and on success the item
// collection becomes exactly the returned snapshot. On failure the
// prior collection is retained and only the lifecycle records the
// reason.
func (s *Store) cartRoundTrip(ctx context.Context, operation, method, path string, body any, notice string) error {
	ctx, span := util.StartSpan(ctx, "Store.Cart."+operation)
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	util.CartMutationsTotal.WithLabelValues(operation).Inc()
	gen := s.begin(opCart, &s.cart.Lifecycle)

	var payload cartPayload
	if err := s.gw.Send(ctx, method, path, body, &payload, true); err != nil {
		s.fail(opCart, gen, &s.cart.Lifecycle, err)
		return err
	}

	applied := s.apply(opCart, gen, func() {
		s.cart.Items = payload.Items
		s.cart.Lifecycle.Succeed()
	})

	if applied && notice != "" {
		s.notifier.Publish(notify.LevelSuccess, notice)
	}
	return nil
}
