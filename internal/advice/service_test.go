package advice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kaanozd/above-cloud/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeModel struct {
	configured bool
	calls      int
	lastPrompt string
	answer     string
	err        error
}

func (m *fakeModel) Configured() bool { return m.configured }

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func testBundle() *models.ForecastBundle {
	return &models.ForecastBundle{
		Current: models.CurrentConditions{
			Temperature:         18.4,
			ApparentTemperature: 17.2,
			Humidity:            62,
			WindSpeed:           12,
			WeatherCode:         2,
		},
		Daily: []models.DailyForecast{
			{Date: "2026-08-31", MaxTemp: 21.6, MinTemp: 12.3, WeatherCode: 61},
			{Date: "2026-09-01", MaxTemp: 23.1, MinTemp: 13.8, WeatherCode: 0},
		},
	}
}

func TestAnswer_MissingKeyFailsWithoutModelCall(t *testing.T) {
	model := &fakeModel{configured: false}
	svc := NewService(model, clockwork.NewFakeClock(), zap.NewNop())

	_, err := svc.Answer(context.Background(), models.ChatRequest{
		WeatherData:  testBundle(),
		UserQuestion: "Do I need an umbrella?",
	})

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, model.calls)
}

func TestAnswer_PromptCarriesForecastAndQuestion(t *testing.T) {
	model := &fakeModel{configured: true, answer: "Yes, take one."}
	// 2026-08-31 is a Monday.
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC))
	svc := NewService(model, clock, zap.NewNop())

	answer, err := svc.Answer(context.Background(), models.ChatRequest{
		WeatherData:  testBundle(),
		UserQuestion: "Do I need an umbrella?",
		Location:     &models.ResolvedPlace{FormattedName: "Paris, Île-de-France, France"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Yes, take one.", answer)

	assert.Contains(t, model.lastPrompt, "Location: Paris, Île-de-France, France")
	assert.Contains(t, model.lastPrompt, "CURRENT CONDITIONS (Monday):")
	assert.Contains(t, model.lastPrompt, "- Temperature: 18°C")
	assert.Contains(t, model.lastPrompt, "partly cloudy")
	assert.Contains(t, model.lastPrompt, "- Monday: 22°C / 12°C, slight rain")
	assert.Contains(t, model.lastPrompt, "- Tuesday: 23°C / 14°C, clear sky")
	assert.Contains(t, model.lastPrompt, `USER QUESTION: "Do I need an umbrella?"`)
}

func TestAnswer_DefaultsLocationLabel(t *testing.T) {
	model := &fakeModel{configured: true, answer: "ok"}
	svc := NewService(model, clockwork.NewFakeClock(), zap.NewNop())

	_, err := svc.Answer(context.Background(), models.ChatRequest{
		WeatherData:  testBundle(),
		UserQuestion: "How warm is it?",
	})
	require.NoError(t, err)

	assert.Contains(t, model.lastPrompt, "Location: Selected location")
}

func TestAnswer_PropagatesModelFailure(t *testing.T) {
	model := &fakeModel{configured: true, err: errors.New("language model returned no candidates")}
	svc := NewService(model, clockwork.NewFakeClock(), zap.NewNop())

	_, err := svc.Answer(context.Background(), models.ChatRequest{
		WeatherData:  testBundle(),
		UserQuestion: "Will it snow?",
	})
	assert.Error(t, err)
}

func TestWeatherCodeDescription(t *testing.T) {
	assert.Equal(t, "clear sky", WeatherCodeDescription(0))
	assert.Equal(t, "thunderstorm", WeatherCodeDescription(95))
	assert.Equal(t, "unknown conditions", WeatherCodeDescription(42))
}
