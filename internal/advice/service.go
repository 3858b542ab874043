package advice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kaanozd/above-cloud/internal/models"
	"go.uber.org/zap"
)

// ErrMissingAPIKey means no language-model key was configured. Checked
// per request so a keyless deployment still serves weather data.
var ErrMissingAPIKey = errors.New("language model API key is not configured")

type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

// Service turns a forecast bundle plus a user question into a prompt
// and relays it to the language model. Stateless: conversation history
// lives with the caller, never here.
type Service struct {
	llm    LanguageModel
	clock  clockwork.Clock
	logger *zap.Logger
}

func NewService(llm LanguageModel, clock clockwork.Clock, logger *zap.Logger) *Service {
	return &Service{
		llm:    llm,
		clock:  clock,
		logger: logger,
	}
}

func (s *Service) Answer(ctx context.Context, req models.ChatRequest) (string, error) {
	if !s.llm.Configured() {
		return "", ErrMissingAPIKey
	}

	prompt := s.buildPrompt(req)

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("Language model call failed", zap.Error(err))
		return "", err
	}

	return answer, nil
}

// buildPrompt re-derives the day name for "today" and each forecast day
// so the model can match questions like "will it rain on Friday".
func (s *Service) buildPrompt(req models.ChatRequest) string {
	current := req.WeatherData.Current

	location := "Selected location"
	if req.Location != nil && req.Location.FormattedName != "" {
		location = req.Location.FormattedName
	}

	var b strings.Builder
	b.WriteString("WEEKLY WEATHER DATA:\n\n")
	fmt.Fprintf(&b, "Location: %s\n\n", location)

	fmt.Fprintf(&b, "CURRENT CONDITIONS (%s):\n", s.clock.Now().Weekday())
	fmt.Fprintf(&b, "- Temperature: %.0f°C\n", math.Round(current.Temperature))
	fmt.Fprintf(&b, "- Feels like: %.0f°C\n", math.Round(current.ApparentTemperature))
	fmt.Fprintf(&b, "- Humidity: %.0f%%\n", current.Humidity)
	fmt.Fprintf(&b, "- Wind: %.0f km/h\n", current.WindSpeed)
	fmt.Fprintf(&b, "- Conditions: %s\n\n", WeatherCodeDescription(current.WeatherCode))

	b.WriteString("7-DAY FORECAST:\n")
	for _, day := range req.WeatherData.Daily {
		fmt.Fprintf(&b, "- %s: %.0f°C / %.0f°C, %s\n",
			dayName(day.Date),
			math.Round(day.MaxTemp),
			math.Round(day.MinTemp),
			WeatherCodeDescription(day.WeatherCode))
	}

	fmt.Fprintf(&b, "\nUSER QUESTION: %q\n\n", req.UserQuestion)

	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Use the forecast for the day the user asked about\n")
	b.WriteString("2. Only use the weather data above\n")
	b.WriteString("3. Keep the answer short, natural and conversational\n")

	return b.String()
}

func dayName(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Weekday().String()
}

// WeatherCodeDescription maps a WMO weather interpretation code to
// human-readable text.
func WeatherCodeDescription(code int) string {
	weatherCodes := map[int]string{
		0:  "clear sky",
		1:  "mainly clear",
		2:  "partly cloudy",
		3:  "overcast",
		45: "foggy",
		48: "depositing rime fog",
		51: "light drizzle",
		53: "moderate drizzle",
		55: "dense drizzle",
		56: "light freezing drizzle",
		57: "dense freezing drizzle",
		61: "slight rain",
		63: "moderate rain",
		65: "heavy rain",
		66: "light freezing rain",
		67: "heavy freezing rain",
		71: "slight snow fall",
		73: "moderate snow fall",
		75: "heavy snow fall",
		77: "snow grains",
		80: "slight rain showers",
		81: "moderate rain showers",
		82: "violent rain showers",
		85: "slight snow showers",
		86: "heavy snow showers",
		95: "thunderstorm",
		96: "thunderstorm with slight hail",
		99: "thunderstorm with heavy hail",
	}

	if desc, ok := weatherCodes[code]; ok {
		return desc
	}
	return "unknown conditions"
}
