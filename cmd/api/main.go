package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/bakery-storefront/internal/api"
	"github.com/example/bakery-storefront/internal/api/middleware"
	"github.com/example/bakery-storefront/internal/auth"
	"github.com/example/bakery-storefront/internal/config"
	"github.com/example/bakery-storefront/internal/domain/category"
	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/example/bakery-storefront/internal/infrastructure/kafka"
	"github.com/example/bakery-storefront/internal/infrastructure/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Failed to load configuration: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Bakery Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[API] Connected to PostgreSQL")

	// Initialize Kafka producer
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	// Initialize stores
	productStore := store.NewPostgresProductStore(db)
	categoryStore := store.NewPostgresCategoryStore(db)
	userStore := store.NewPostgresUserStore(db)
	orderStore := store.NewPostgresOrderStore(db)

	// Initialize domain services
	catalogSvc := product.NewCatalogService(productStore)
	categorySvc := category.NewService(categoryStore, productStore)
	userSvc := user.NewService(userStore)
	orderSvc := order.NewService(orderStore, productStore, userStore, producer)

	// Initialize token verifier
	verifier := newVerifier(cfg)

	// Initialize API
	handlers := api.NewHandlers(catalogSvc, categorySvc, orderSvc, userSvc, verifier)
	authn := middleware.NewAuthenticator(verifier, userSvc, cfg.AdminEmails)
	router := api.NewRouter(handlers, authn)

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

// newVerifier picks the identity verifier: remote when a verification
// endpoint is configured, otherwise the shared-secret development verifier.
func newVerifier(cfg *config.Config) auth.TokenVerifier {
	if cfg.IdentityVerifyURL != "" {
		log.Printf("[API] Verifying tokens via %s", cfg.IdentityVerifyURL)
		return auth.NewRemoteVerifier(cfg.IdentityVerifyURL)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[API] Either IDENTITY_VERIFY_URL or JWT_SECRET must be set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[API] JWT_SECRET must be at least 32 characters long")
	}
	log.Println("[API] Verifying tokens with shared secret (development mode)")
	return auth.NewJWTVerifier(cfg.JWTSecret, 24*time.Hour)
}
