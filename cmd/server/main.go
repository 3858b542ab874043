package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/kaanozd/above-cloud/internal/advice"
	"github.com/kaanozd/above-cloud/internal/api"
	"github.com/kaanozd/above-cloud/internal/config"
	"github.com/kaanozd/above-cloud/internal/geo"
	"github.com/kaanozd/above-cloud/internal/observability"
	"github.com/kaanozd/above-cloud/internal/stats"
	"github.com/kaanozd/above-cloud/pkg/client"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting weather dashboard backend")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.Gemini.APIKey == "" {
		logger.Warn("No language model API key configured, chat requests will be rejected")
	}

	metrics := observability.NewMetrics()

	clientCfg := client.ClientConfig{
		Timeout:        cfg.Providers.Timeout,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	// Outbound provider clients
	forecastClient := client.NewOpenMeteoClient(cfg.Providers.ForecastURL, clientCfg, logger)
	geocodingClient := client.NewGeocodingClient(cfg.Providers.GeocodingURL, clientCfg, logger)
	nominatimClient := client.NewNominatimClient(cfg.Providers.ReverseGeoURL, clientCfg, logger)
	ipClient := client.NewIPLocatorClient(cfg.Providers.IPGeoURL, clientCfg, logger)
	geminiClient := client.NewGeminiClient(cfg.Gemini.Endpoint, cfg.Gemini.APIKey, clientCfg, logger)

	// Location resolver owns the forward and reverse caches for the
	// process lifetime.
	resolver := geo.NewResolver(geocodingClient, nominatimClient, ipClient, metrics, logger)

	adviceService := advice.NewService(geminiClient, clockwork.NewRealClock(), logger)

	// Periodic cache stats logging
	reporter := stats.NewReporter(resolver, cfg.Stats.Schedule, logger)
	if err := reporter.Start(); err != nil {
		logger.Fatal("Failed to start stats reporter", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	handler := api.NewHandler(resolver, forecastClient, adviceService, metrics, logger)
	api.SetupRoutes(app, handler)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reporter.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
