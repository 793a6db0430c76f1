package store

import (
	"context"
	"net/http"

	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/state"
	"storefront-client/internal/util"
)

// AdminState owns the dashboard reads. Each concern has its own
// lifecycle so the dashboard can load stats, users, products and orders
// concurrently.
type AdminState struct {
	Stats    *models.DashboardStats
	Users    []models.User
	Products []models.Product
	Orders   []models.Order

	StatsStatus    state.Lifecycle
	UsersStatus    state.Lifecycle
	ProductsStatus state.Lifecycle
	OrdersStatus   state.Lifecycle
}

// FetchDashboardStats loads the aggregate dashboard figures (admin).
func (s *Store) FetchDashboardStats(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchDashboardStats")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opAdminStats, &s.admin.StatsStatus)

	var stats models.DashboardStats
	if err := s.gw.Send(ctx, http.MethodGet, "/admin/stats", nil, &stats, true); err != nil {
		s.fail(opAdminStats, gen, &s.admin.StatsStatus, err)
		return err
	}

	s.apply(opAdminStats, gen, func() {
		s.admin.Stats = &stats
		s.admin.StatsStatus.Succeed()
	})
	return nil
}

// FetchUsers loads all registered users (admin).
func (s *Store) FetchUsers(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchUsers")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opAdminUsers, &s.admin.UsersStatus)

	var users []models.User
	if err := s.gw.Send(ctx, http.MethodGet, "/admin/users", nil, &users, true); err != nil {
		s.fail(opAdminUsers, gen, &s.admin.UsersStatus, err)
		return err
	}

	s.apply(opAdminUsers, gen, func() {
		s.admin.Users = users
		s.admin.UsersStatus.Succeed()
	})
	return nil
}

// FetchAllProducts loads the unpaginated product list (admin).
func (s *Store) FetchAllProducts(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchAllProducts")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opAdminProducts, &s.admin.ProductsStatus)

	var products []models.Product
	if err := s.gw.Send(ctx, http.MethodGet, "/admin/products", nil, &products, true); err != nil {
		s.fail(opAdminProducts, gen, &s.admin.ProductsStatus, err)
		return err
	}

	s.apply(opAdminProducts, gen, func() {
		s.admin.Products = products
		s.admin.ProductsStatus.Succeed()
	})
	return nil
}

// FetchAllOrders loads every order across users (admin).
func (s *Store) FetchAllOrders(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchAllOrders")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opAdminOrders, &s.admin.OrdersStatus)

	var orders []models.Order
	if err := s.gw.Send(ctx, http.MethodGet, "/admin/orders", nil, &orders, true); err != nil {
		s.fail(opAdminOrders, gen, &s.admin.OrdersStatus, err)
		return err
	}

	s.apply(opAdminOrders, gen, func() {
		s.admin.Orders = orders
		s.admin.OrdersStatus.Succeed()
	})
	return nil
}

// DeleteUser removes a user account (admin) and filters it out of the
// loaded user list.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := util.StartSpan(ctx, "Store.DeleteUser")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opAdminUsers, &s.admin.UsersStatus)

	if err := s.gw.Send(ctx, http.MethodDelete, "/admin/users/"+userID, nil, nil, true); err != nil {
		s.fail(opAdminUsers, gen, &s.admin.UsersStatus, err)
		return err
	}

	applied := s.apply(opAdminUsers, gen, func() {
		remaining := make([]models.User, 0, len(s.admin.Users))
		for _, u := range s.admin.Users {
			if u.ID != userID {
				remaining = append(remaining, u)
			}
		}
		s.admin.Users = remaining
		s.admin.UsersStatus.Succeed()
	})

	if applied {
		s.notifier.Publish(notify.LevelSuccess, "User removed.")
	}
	return nil
}
