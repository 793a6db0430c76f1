package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/state"
	"storefront-client/internal/util"
)

// DefaultPageSize matches the storefront's products-per-page setting.
const DefaultPageSize = 12

// CatalogState owns the product listing and the currently viewed
// product. Listing and detail have independent lifecycles: resolving a
// detail fetch never disturbs an in-flight listing fetch and vice versa.
type CatalogState struct {
	Products      []models.Product
	CurrentPage   int
	TotalPages    int
	TotalProducts int
	Current       *models.Product

	Listing state.Lifecycle
	Detail  state.Lifecycle
}

// SearchParams filter and paginate a catalog search.
type SearchParams struct {
	Keyword  string
	Category string
	Page     int
	PageSize int
}

func (p SearchParams) query() string {
	values := url.Values{}
	if p.Keyword != "" {
		values.Set("keyword", p.Keyword)
	}
	if p.Category != "" {
		values.Set("category", p.Category)
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(size))
	return values.Encode()
}

// SearchProducts replaces the listing and its pagination metadata with
// one page of results.
func (s *Store) SearchProducts(ctx context.Context, params SearchParams) error {
	ctx, span := util.StartSpan(ctx, "Store.SearchProducts")
	defer span.End()

	gen := s.begin(opCatalogListing, &s.catalog.Listing)

	var page models.ProductPage
	if err := s.gw.Send(ctx, http.MethodGet, "/products?"+params.query(), nil, &page, false); err != nil {
		s.fail(opCatalogListing, gen, &s.catalog.Listing, err)
		return err
	}

	s.apply(opCatalogListing, gen, func() {
		s.catalog.Products = page.Products
		s.catalog.CurrentPage = page.CurrentPage
		s.catalog.TotalPages = page.TotalPages
		s.catalog.TotalProducts = page.TotalProducts
		s.catalog.Listing.Succeed()
	})
	return nil
}

// FetchProduct populates the current-product slot, independent of the
// listing.
func (s *Store) FetchProduct(ctx context.Context, productID string) error {
	ctx, span := util.StartSpan(ctx, "Store.FetchProduct")
	defer span.End()

	gen := s.begin(opCatalogDetail, &s.catalog.Detail)

	var product models.Product
	if err := s.gw.Send(ctx, http.MethodGet, "/products/"+productID, nil, &product, false); err != nil {
		s.fail(opCatalogDetail, gen, &s.catalog.Detail, err)
		return err
	}

	s.apply(opCatalogDetail, gen, func() {
		s.catalog.Current = &product
		s.catalog.Detail.Succeed()
	})
	return nil
}

// ClearCurrentProduct drops the current-product slot, e.g. when leaving
// a detail view.
func (s *Store) ClearCurrentProduct() {
	s.mu.Lock()
	s.catalog.Current = nil
	s.catalog.Detail.Reset()
	snap, subs := s.fanoutLocked()
	s.mu.Unlock()
	dispatch(snap, subs)
}

// CreateProduct adds a product to the catalog (admin). Authorization is
// the backend's call; the new product is prepended to the listing on
// success.
func (s *Store) CreateProduct(ctx context.Context, input models.ProductInput) error {
	ctx, span := util.StartSpan(ctx, "Store.CreateProduct")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opCatalogListing, &s.catalog.Listing)

	var product models.Product
	if err := s.gw.Send(ctx, http.MethodPost, "/products", input, &product, true); err != nil {
		s.fail(opCatalogListing, gen, &s.catalog.Listing, err)
		return err
	}

	applied := s.apply(opCatalogListing, gen, func() {
		s.catalog.Products = append([]models.Product{product}, s.catalog.Products...)
		s.catalog.Listing.Succeed()
	})

	if applied {
		s.notifier.Publish(notify.LevelSuccess, "Product created successfully!")
	}
	return nil
}

// UpdateProduct updates a product (admin) and replaces the matching
// listing entry by identity.
func (s *Store) UpdateProduct(ctx context.Context, productID string, input models.ProductInput) error {
	ctx, span := util.StartSpan(ctx, "Store.UpdateProduct")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opCatalogListing, &s.catalog.Listing)

	var product models.Product
	if err := s.gw.Send(ctx, http.MethodPut, "/products/"+productID, input, &product, true); err != nil {
		s.fail(opCatalogListing, gen, &s.catalog.Listing, err)
		return err
	}

	applied := s.apply(opCatalogListing, gen, func() {
		for i := range s.catalog.Products {
			if s.catalog.Products[i].ID == product.ID {
				updated := make([]models.Product, len(s.catalog.Products))
				copy(updated, s.catalog.Products)
				updated[i] = product
				s.catalog.Products = updated
				break
			}
		}
		s.catalog.Listing.Succeed()
	})

	if applied {
		s.notifier.Publish(notify.LevelSuccess, "Product updated successfully!")
	}
	return nil
}

// DeleteProduct removes a product (admin) and filters it out of the
// listing.
func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	ctx, span := util.StartSpan(ctx, "Store.DeleteProduct")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opCatalogListing, &s.catalog.Listing)

	path := fmt.Sprintf("/products/%s", productID)
	if err := s.gw.Send(ctx, http.MethodDelete, path, nil, nil, true); err != nil {
		s.fail(opCatalogListing, gen, &s.catalog.Listing, err)
		return err
	}

	applied := s.apply(opCatalogListing, gen, func() {
		remaining := make([]models.Product, 0, len(s.catalog.Products))
		for _, p := range s.catalog.Products {
			if p.ID != productID {
				remaining = append(remaining, p)
			}
		}
		s.catalog.Products = remaining
		s.catalog.Listing.Succeed()
	})

	if applied {
		s.notifier.Publish(notify.LevelSuccess, "Product deleted successfully!")
	}
	return nil
}
