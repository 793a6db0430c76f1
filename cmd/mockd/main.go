// mockd serves the in-memory storefront backend for local development
// of the client.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"storefront-client/internal/mockapi"
	"storefront-client/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	port := os.Getenv("MOCKD_PORT")
	if port == "" {
		port = "5000"
	}

	server := mockapi.NewServer()
	seed(server)

	admin := server.SeedAdmin("Admin", "admin@example.com", "admin123")
	log.Printf("Seeded admin account: %s / admin123", admin.Email)

	log.Printf("mockd listening on :%s", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", port), server.Router()); err != nil {
		log.Fatalf("mockd failed: %v", err)
	}
}

func seed(server *mockapi.Server) {
	products := []models.Product{
		{Name: "Wireless Headphones", Description: "Over-ear, noise cancelling", Price: decimal.NewFromFloat(79.99), Stock: 25, Category: "Electronics"},
		{Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: decimal.NewFromFloat(119.00), Stock: 10, Category: "Electronics"},
		{Name: "Espresso Maker", Description: "Stovetop, 6 cups", Price: decimal.NewFromFloat(34.50), Stock: 40, Category: "Home & Kitchen"},
		{Name: "Trail Running Shoes", Description: "Lightweight, size range 7-13", Price: decimal.NewFromFloat(94.95), Stock: 18, Category: "Sports & Outdoors"},
		{Name: "Paperback Thriller", Description: "Bestselling crime novel", Price: decimal.NewFromFloat(12.99), Stock: 60, Category: "Books"},
	}
	for _, p := range products {
		server.SeedProduct(p)
	}
}
