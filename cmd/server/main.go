package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cashcraft/server/internal/api"
	"github.com/cashcraft/server/internal/config"
	"github.com/cashcraft/server/internal/rates"
	"github.com/cashcraft/server/internal/repository"
	"github.com/cashcraft/server/internal/service"
	"github.com/cashcraft/server/internal/utils"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	_ = godotenv.Load()

	// Load configuration
	cfg := config.LoadConfig()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	logger := utils.NewLogger()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Set up the exchange-rate resolver with its background refresh loop
	provider := rates.NewOpenExchangeRates(cfg.Rates.ProviderURL, cfg.Rates.ProviderAppID)
	resolver := rates.NewResolver(repo, provider, logger)
	resolver.Start(context.Background(), cfg.Rates.RefreshInterval)

	// Prune expired refresh tokens daily
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := repo.DeleteExpiredRefreshTokens(context.Background()); err != nil {
				logger.Error("refresh token cleanup failed: %v", err)
			} else if n > 0 {
				logger.Info("pruned %d expired refresh tokens", n)
			}
		}
	}()

	// Create service
	svc := service.NewDefaultService(repo, resolver, logger,
		cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
