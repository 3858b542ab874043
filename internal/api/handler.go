package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kaanozd/above-cloud/internal/advice"
	"github.com/kaanozd/above-cloud/internal/geo"
	"github.com/kaanozd/above-cloud/internal/models"
	"github.com/kaanozd/above-cloud/internal/observability"
	"go.uber.org/zap"
)

// Suggest queries shorter than this never reach the geocoding provider.
const minSearchLength = 2

var validate = validator.New()

type ForecastFetcher interface {
	GetForecast(ctx context.Context, lat, lon float64) (models.ForecastBundle, error)
}

type AdviceProvider interface {
	Answer(ctx context.Context, req models.ChatRequest) (string, error)
}

type Handler struct {
	resolver *geo.Resolver
	forecast ForecastFetcher
	advice   AdviceProvider
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewHandler(resolver *geo.Resolver, forecast ForecastFetcher, adviceProvider AdviceProvider, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		forecast: forecast,
		advice:   adviceProvider,
		metrics:  metrics,
		logger:   logger,
	}
}

// GetWeather handles GET /api/weather?lat&lon. One upstream call per
// request, no caching: every refresh re-fetches.
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "latitude and longitude are required",
		})
	}

	start := time.Now()
	bundle, err := h.forecast.GetForecast(c.Context(), lat, lon)
	h.metrics.UpstreamDuration.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	if err != nil {
		h.metrics.ForecastRequests.WithLabelValues("error").Inc()
		h.logger.Error("Failed to fetch forecast",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.metrics.ForecastRequests.WithLabelValues("success").Inc()
	return c.JSON(bundle)
}

// PostChat handles POST /api/chat. Stateless: the full forecast context
// arrives with every request.
func (h *Handler) PostChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		h.metrics.ChatRequests.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(models.ChatResponse{
			Success: false,
			Error:   "weather data and a question are required",
		})
	}

	if err := validate.Struct(req); err != nil {
		h.metrics.ChatRequests.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(models.ChatResponse{
			Success: false,
			Error:   "weather data and a question are required",
		})
	}

	answer, err := h.advice.Answer(c.Context(), req)
	if err != nil {
		h.metrics.ChatRequests.WithLabelValues("error").Inc()

		if errors.Is(err, advice.ErrMissingAPIKey) {
			h.logger.Error("Chat request rejected, no provider key configured")
			return c.Status(fiber.StatusInternalServerError).JSON(models.ChatResponse{
				Success: false,
				Error:   "API key not configured",
			})
		}

		h.logger.Error("Chat request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ChatResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	h.metrics.ChatRequests.WithLabelValues("success").Inc()
	return c.JSON(models.ChatResponse{
		Success: true,
		Answer:  answer,
	})
}

// SearchLocations handles GET /api/locations/search?name=. This is the
// autocomplete path: too-short queries and provider failures both
// collapse to an empty candidate list; a failed keystroke-driven
// suggestion must never interrupt typing.
func (h *Handler) SearchLocations(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if len([]rune(name)) < minSearchLength {
		return c.JSON(fiber.Map{"results": []models.PlaceCandidate{}})
	}

	candidates, err := h.resolver.SearchLocations(c.Context(), name)
	if err != nil {
		h.logger.Warn("Location search failed", zap.String("name", name), zap.Error(err))
		return c.JSON(fiber.Map{"results": []models.PlaceCandidate{}})
	}

	if candidates == nil {
		candidates = []models.PlaceCandidate{}
	}
	return c.JSON(fiber.Map{"results": candidates})
}

// ReverseLocation handles GET /api/locations/reverse?lat&lon.
func (h *Handler) ReverseLocation(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "latitude and longitude are required",
		})
	}

	place, err := h.resolver.GetLocationName(c.Context(), lat, lon)
	if err != nil {
		h.logger.Error("Reverse lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(place)
}

// IPLocation handles GET /api/locations/ip.
func (h *Handler) IPLocation(c *fiber.Ctx) error {
	loc, err := h.resolver.GetLocationByIP(c.Context())
	if err != nil {
		h.logger.Warn("IP location failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not determine your location by IP. Please enter a city name manually.",
		})
	}

	return c.JSON(loc)
}

// GetHealth handles GET /api/health.
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	stats := h.resolver.CacheStats()

	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"resolver_cache": fiber.Map{
			"forward_entries": stats.ForwardEntries,
			"reverse_entries": stats.ReverseEntries,
		},
	})
}

func parseCoordinates(c *fiber.Ctx) (float64, float64, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

var startTime = time.Now()
