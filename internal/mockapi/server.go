// Package mockapi is an in-memory stand-in for the storefront backend,
// implementing the REST surface the client consumes. The test suite
// runs it under httptest; cmd/mockd serves it for local development.
package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront-client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type account struct {
	user     models.User
	password string
	address  *models.Address
}

// Server holds the in-memory data set behind the fake API.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account          // by user ID
	emails   map[string]string            // email -> user ID
	tokens   map[string]string            // token -> user ID
	products map[string]models.Product    // by product ID
	carts    map[string][]models.CartItem // by user ID
	orders   map[string]models.Order      // by order ID
	owners   map[string]string            // order ID -> user ID
	seq      int
}

// NewServer creates an empty fake backend.
func NewServer() *Server {
	return &Server{
		accounts: make(map[string]*account),
		emails:   make(map[string]string),
		tokens:   make(map[string]string),
		products: make(map[string]models.Product),
		carts:    make(map[string][]models.CartItem),
		orders:   make(map[string]models.Order),
		owners:   make(map[string]string),
	}
}

// Router builds the gin engine exposing the API surface.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/auth/register", s.register)
	router.POST("/auth/login", s.login)
	router.PUT("/auth/profile", s.requireAuth, s.updateProfile)

	router.GET("/products", s.listProducts)
	router.GET("/products/:id", s.getProduct)
	router.POST("/products", s.requireAdmin, s.createProduct)
	router.PUT("/products/:id", s.requireAdmin, s.updateProduct)
	router.DELETE("/products/:id", s.requireAdmin, s.deleteProduct)

	router.GET("/cart", s.requireAuth, s.getCart)
	router.POST("/cart/add", s.requireAuth, s.addToCart)
	router.PUT("/cart/update/:productId", s.requireAuth, s.updateCartItem)
	router.DELETE("/cart/remove/:productId", s.requireAuth, s.removeFromCart)
	router.DELETE("/cart/clear", s.requireAuth, s.clearCart)

	router.POST("/orders", s.requireAuth, s.createOrder)
	router.GET("/orders", s.requireAuth, s.listOrders)
	router.GET("/orders/:id", s.requireAuth, s.getOrder)
	router.PUT("/orders/:id/status", s.requireAdmin, s.updateOrderStatus)

	router.GET("/admin/stats", s.requireAdmin, s.dashboardStats)
	router.GET("/admin/users", s.requireAdmin, s.listUsers)
	router.GET("/admin/products", s.requireAdmin, s.listAllProducts)
	router.GET("/admin/orders", s.requireAdmin, s.listAllOrders)
	router.DELETE("/admin/users/:id", s.requireAdmin, s.deleteUser)

	return router
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// SeedProduct inserts a product, assigning an ID when absent.
func (s *Server) SeedProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID("prod")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.products[p.ID] = p
	return p
}

// SeedAdmin inserts an admin account and returns its credentials.
func (s *Server) SeedAdmin(name, email, password string) models.User {
	return s.seedAccount(name, email, password, models.RoleAdmin)
}

func (s *Server) seedAccount(name, email, password, role string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := models.User{
		ID:        s.nextID("user"),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.accounts[user.ID] = &account{user: user, password: password}
	s.emails[email] = user.ID
	return user
}

// currentUser resolves the bearer token; the zero value means no valid
// credential was presented.
func (s *Server) currentUser(c *gin.Context) (*account, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	userID, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	acct, ok := s.accounts[userID]
	return acct, ok
}

func (s *Server) requireAuth(c *gin.Context) {
	s.mu.Lock()
	acct, ok := s.currentUser(c)
	s.mu.Unlock()
	if !ok {
		fail(c, http.StatusUnauthorized, "Please login to continue.")
		return
	}
	c.Set("account", acct)
}

func (s *Server) requireAdmin(c *gin.Context) {
	s.mu.Lock()
	acct, ok := s.currentUser(c)
	s.mu.Unlock()
	if !ok {
		fail(c, http.StatusUnauthorized, "Please login to continue.")
		return
	}
	if acct.user.Role != models.RoleAdmin {
		fail(c, http.StatusForbidden, "You are not authorized to perform this action.")
		return
	}
	c.Set("account", acct)
}

func boundAccount(c *gin.Context) *account {
	return c.MustGet("account").(*account)
}

func (s *Server) sessionFor(acct *account) models.Session {
	token := uuid.New().String()
	s.tokens[token] = acct.user.ID
	return models.Session{
		ID:      acct.user.ID,
		Name:    acct.user.Name,
		Email:   acct.user.Email,
		Role:    acct.user.Role,
		Token:   token,
		Address: acct.address,
	}
}

// RevokeTokens invalidates every issued token, simulating backend-side
// credential expiry.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Name, email and password are required.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[req.Email]; exists {
		fail(c, http.StatusBadRequest, "An account with this email already exists.")
		return
	}

	user := models.User{
		ID:        s.nextID("user"),
		Name:      req.Name,
		Email:     req.Email,
		Role:      models.RoleCustomer,
		CreatedAt: time.Now(),
	}
	acct := &account{user: user, password: req.Password}
	s.accounts[user.ID] = acct
	s.emails[user.Email] = user.ID

	c.JSON(http.StatusCreated, s.sessionFor(acct))
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.emails[req.Email]
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid email or password.")
		return
	}
	acct := s.accounts[userID]
	if acct.password != req.Password {
		fail(c, http.StatusBadRequest, "Invalid email or password.")
		return
	}

	c.JSON(http.StatusOK, s.sessionFor(acct))
}

// updateProfile applies the changed fields and echoes back only what
// changed, matching the backend's partial-response contract.
func (s *Server) updateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := boundAccount(c)
	response := gin.H{}
	if req.Name != nil {
		acct.user.Name = *req.Name
		response["name"] = *req.Name
	}
	if req.Email != nil {
		delete(s.emails, acct.user.Email)
		acct.user.Email = *req.Email
		s.emails[*req.Email] = acct.user.ID
		response["email"] = *req.Email
	}
	if req.Password != nil {
		acct.password = *req.Password
	}
	if req.Address != nil {
		acct.address = req.Address
		response["address"] = req.Address
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) listProducts(c *gin.Context) {
	keyword := strings.ToLower(c.Query("keyword"))
	category := c.Query("category")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if keyword != "" && !strings.Contains(strings.ToLower(p.Name), keyword) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, models.ProductPage{
		Products:      matched[start:end],
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
	})
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Product{
		ID:          s.nextID("prod"),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		Images:      input.Images,
		CreatedAt:   time.Now(),
	}
	s.products[p.ID] = p
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	p.Name = input.Name
	p.Description = input.Description
	p.Price = input.Price
	p.Stock = input.Stock
	p.Category = input.Category
	if input.Images != nil {
		p.Images = input.Images
	}
	s.products[p.ID] = p
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.products[id]; !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	delete(s.products, id)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted."})
}

func (s *Server) cartOf(userID string) []models.CartItem {
	if items, ok := s.carts[userID]; ok {
		return items
	}
	return []models.CartItem{}
}

func (s *Server) respondCart(c *gin.Context, userID string) {
	c.JSON(http.StatusOK, gin.H{"items": s.cartOf(userID)})
}

func (s *Server) getCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondCart(c, boundAccount(c).user.ID)
}

func (s *Server) addToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[req.ProductID]
	if !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}

	userID := boundAccount(c).user.ID
	items := s.cartOf(userID)
	quantity := req.Quantity
	index := -1
	for i, item := range items {
		if item.Product.ID == req.ProductID {
			quantity += item.Quantity
			index = i
			break
		}
	}
	if quantity > product.Stock {
		fail(c, http.StatusBadRequest, "Insufficient stock available.")
		return
	}

	if index >= 0 {
		items[index].Quantity = quantity
	} else {
		items = append(items, models.CartItem{Product: product, Quantity: quantity})
	}
	s.carts[userID] = items
	s.respondCart(c, userID)
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID := boundAccount(c).user.ID
	productID := c.Param("productId")
	items := s.cartOf(userID)
	for i, item := range items {
		if item.Product.ID != productID {
			continue
		}
		if req.Quantity > item.Product.Stock {
			fail(c, http.StatusBadRequest, "Insufficient stock available.")
			return
		}
		items[i].Quantity = req.Quantity
		s.carts[userID] = items
		s.respondCart(c, userID)
		return
	}
	fail(c, http.StatusNotFound, "The requested resource was not found.")
}

func (s *Server) removeFromCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := boundAccount(c).user.ID
	productID := c.Param("productId")
	items := s.cartOf(userID)
	remaining := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.Product.ID != productID {
			remaining = append(remaining, item)
		}
	}
	s.carts[userID] = remaining
	s.respondCart(c, userID)
}

func (s *Server) clearCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := boundAccount(c).user.ID
	s.carts[userID] = []models.CartItem{}
	s.respondCart(c, userID)
}

func (s *Server) createOrder(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID := boundAccount(c).user.ID
	items := s.cartOf(userID)
	if len(items) == 0 {
		fail(c, http.StatusBadRequest, "Your cart is empty.")
		return
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	order := models.Order{
		ID:              s.nextID("order"),
		Items:           items,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       time.Now(),
	}
	s.orders[order.ID] = order
	s.owners[order.ID] = userID
	s.carts[userID] = []models.CartItem{}

	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := boundAccount(c).user.ID
	orders := make([]models.Order, 0, len(s.orders))
	for id, o := range s.orders {
		if s.owners[id] == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		fail(c, http.StatusBadRequest, "Please check your input and try again.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	order.Status = req.Status
	s.orders[order.ID] = order
	c.JSON(http.StatusOK, order)
}

func (s *Server) dashboardStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revenue := decimal.Zero
	for _, o := range s.orders {
		revenue = revenue.Add(o.TotalAmount)
	}
	c.JSON(http.StatusOK, models.DashboardStats{
		TotalUsers:    len(s.accounts),
		TotalProducts: len(s.products),
		TotalOrders:   len(s.orders),
		TotalRevenue:  revenue,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.accounts))
	for _, acct := range s.accounts {
		users = append(users, acct.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	c.JSON(http.StatusOK, users)
}

func (s *Server) listAllProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	c.JSON(http.StatusOK, products)
}

func (s *Server) listAllOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	c.JSON(http.StatusOK, orders)
}

func (s *Server) deleteUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	acct, ok := s.accounts[id]
	if !ok {
		fail(c, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	delete(s.accounts, id)
	delete(s.emails, acct.user.Email)
	delete(s.carts, id)
	for token, userID := range s.tokens {
		if userID == id {
			delete(s.tokens, token)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed."})
}
