package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bcnelson/addrscope/internal/api"
	"github.com/bcnelson/addrscope/internal/api/middleware"
	"github.com/bcnelson/addrscope/internal/auth"
	"github.com/bcnelson/addrscope/internal/config"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/service"
	"github.com/bcnelson/addrscope/internal/storage/sql"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create data directory if needed (for SQLite)
	if cfg.Database.Driver == "sqlite3" || cfg.Database.Driver == "sqlite" {
		dir := filepath.Dir(cfg.Database.DSN)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// Initialize storage
	store, err := sql.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	locale, err := cfg.Display.LocaleTag()
	if err != nil {
		log.Fatalf("Invalid locale: %v", err)
	}

	svc := service.NewInspectorService(store, service.Options{
		Limits: domain.SplitOptions{
			SoftLimit: cfg.Bulk.SoftLimit,
			HardLimit: cfg.Bulk.HardLimit,
		},
		Workers: cfg.Bulk.Workers,
		Locale:  locale,
	})

	// Optional OIDC bearer tokens alongside API keys
	var verifier middleware.TokenVerifier
	if cfg.OIDC.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		v, err := auth.NewVerifier(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID, cfg.OIDC.GetAllowedDomains())
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize OIDC: %v", err)
		}
		verifier = v
		log.Printf("OIDC bearer tokens enabled for issuer %s", cfg.OIDC.IssuerURL)
	}

	// Create router
	router := api.NewRouter(store, svc, cfg.Auth.BootstrapAPIKey, verifier)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting addrscope on http://%s (db=%s, workers=%d, locale=%s)",
		cfg.Server.Addr(), cfg.Database.Driver, cfg.Bulk.Workers, locale)
	log.Printf("Press Ctrl+C to stop")

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
