package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Providers struct {
		ForecastURL   string
		GeocodingURL  string
		ReverseGeoURL string
		IPGeoURL      string
		Timeout       time.Duration
	}

	Gemini struct {
		Endpoint string
		APIKey   string
	}

	CircuitBreaker struct {
		Timeout time.Duration
	}

	Stats struct {
		Schedule string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("PORT", "3001")
	cfg.Server.ReadTimeout = parseDuration(getEnv("READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("WRITE_TIMEOUT", "30s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Provider endpoints. All externally supplied so deployments never
	// bake in environment-specific literals.
	cfg.Providers.ForecastURL = getEnv("FORECAST_URL", "https://api.open-meteo.com/v1")
	cfg.Providers.GeocodingURL = getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")
	cfg.Providers.ReverseGeoURL = getEnv("REVERSE_GEO_URL", "https://nominatim.openstreetmap.org")
	cfg.Providers.IPGeoURL = getEnv("IP_GEO_URL", "https://ipapi.co/json/")
	cfg.Providers.Timeout = parseDuration(getEnv("PROVIDER_TIMEOUT", "10s"))

	// Language model configuration. A missing key is a request-time
	// error on the chat path, never a startup failure.
	cfg.Gemini.Endpoint = getEnv("GEMINI_URL",
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-lite:generateContent")
	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", "")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Stats reporter configuration
	cfg.Stats.Schedule = getEnv("STATS_SCHEDULE", "@every 10m")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}
