package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/tillpoint/pos-backend/internal/db"
	"github.com/tillpoint/pos-backend/internal/modules/cart"
	"github.com/tillpoint/pos-backend/internal/modules/catalog"
	"github.com/tillpoint/pos-backend/internal/modules/checkout"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg := db.ConfigFromEnv()
	database, err := db.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.Migrate(database, cfg.Driver); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Catalog store ready (%s)\n", cfg.Driver)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Catalog ─────────────────────────────────────────────
	catalogRepo := catalog.NewSQLRepository(database)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	// ── Cart ────────────────────────────────────────────────
	statePath := os.Getenv("POS_STATE_PATH")
	if statePath == "" {
		statePath = "cart-state.json"
	}
	session, err := cart.NewSession(cart.NewFileStore(statePath))
	if err != nil {
		log.Fatal(err)
	}
	cart.NewHandler(session, catalogService).RegisterRoutes(router)

	// ── Checkout ────────────────────────────────────────────
	orderURL := os.Getenv("ORDER_API_URL")
	if orderURL == "" {
		orderURL = "http://localhost:3000"
	}
	orderTimeout := 30 * time.Second
	if raw := os.Getenv("ORDER_API_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid ORDER_API_TIMEOUT: %v", err)
		}
		orderTimeout = d
	}
	orders := checkout.NewOrderClient(orderURL, orderTimeout)
	checkoutService := checkout.NewService(session, orders)
	checkout.NewHandler(checkoutService).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("POS API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
