package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is the client's record of the authenticated identity. It is
// stored verbatim as returned by the backend and persisted as a single
// durable record.
type Session struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	Token   string   `json:"token"`
	Address *Address `json:"address,omitempty"`
}

// IsAdmin reports whether the session belongs to an admin user.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is a postal address used for profiles and order shipping.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Product represents a catalog product. Read-only from the client's
// perspective; mutated only through explicit admin calls.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Ratings     Ratings         `json:"ratings"`
	Seller      string          `json:"seller,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// Ratings holds the aggregate rating for a product.
type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ProductPage is one page of catalog search results with pagination
// metadata, replaced wholesale on every search.
type ProductPage struct {
	Products      []Product `json:"products"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int       `json:"totalProducts"`
}

// CartItem is one line of the authenticated user's cart. The collection
// of items is a cache of the last successful server response.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (ci CartItem) Subtotal() decimal.Decimal {
	return ci.Product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Order represents a placed order. Status transitions only arrive from
// the backend; the client never advances them optimistically.
type Order struct {
	ID              string          `json:"_id"`
	Items           []CartItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          string          `json:"status"`
	ShippingAddress Address         `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// User is the admin dashboard's view of a registered account.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardStats are the aggregate figures shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// RegisterRequest carries the fields posted to /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries the credentials posted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the partial fields sent to /auth/profile. Nil
// fields are omitted so the backend only sees what changed.
type ProfileUpdate struct {
	Name     *string  `json:"name,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Password *string  `json:"password,omitempty"`
	Address  *Address `json:"address,omitempty"`
	Avatar   *string  `json:"avatar,omitempty"`
}

// ProductInput carries the fields for admin product create/update.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Images      []string        `json:"images,omitempty"`
}

// CheckoutRequest carries the shipping and payment choice posted to
// /orders. The backend builds the order from the current cart.
type CheckoutRequest struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"`
}

// Payment methods accepted at checkout.
const (
	PaymentCreditCard     = "credit_card"
	PaymentDebitCard      = "debit_card"
	PaymentPaypal         = "paypal"
	PaymentCashOnDelivery = "cod"
)
