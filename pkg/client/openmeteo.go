package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kaanozd/above-cloud/internal/models"
	"go.uber.org/zap"
)

const forecastDays = 7

// OpenMeteoClient fetches forecast bundles from the Open-Meteo API.
// Results are never cached here: every location change or refresh is a
// fresh upstream call.
type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type openMeteoForecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Current   struct {
		Time               string  `json:"time"`
		Temperature2M      float64 `json:"temperature_2m"`
		RelativeHumidity2M float64 `json:"relative_humidity_2m"`
		ApparentTemp       float64 `json:"apparent_temperature"`
		WeatherCode        int     `json:"weather_code"`
		WindSpeed10M       float64 `json:"wind_speed_10m"`
		WindDirection10M   float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		Temperature2MMax []float64 `json:"temperature_2m_max"`
		Temperature2MMin []float64 `json:"temperature_2m_min"`
		Sunrise          []string  `json:"sunrise"`
		Sunset           []string  `json:"sunset"`
	} `json:"daily"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("weather service", config, logger),
		baseURL:    baseURL,
	}
}

// GetForecast performs exactly one upstream call and normalizes the
// provider's parallel daily arrays into an ordered day sequence.
func (c *OpenMeteoClient) GetForecast(ctx context.Context, lat, lon float64) (models.ForecastBundle, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,wind_direction_10m")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset")
	params.Set("timezone", "auto")
	params.Set("forecast_days", fmt.Sprintf("%d", forecastDays))

	data, err := c.Get(ctx, fmt.Sprintf("%s/forecast?%s", c.baseURL, params.Encode()))
	if err != nil {
		return models.ForecastBundle{}, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var response openMeteoForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return models.ForecastBundle{}, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	bundle := models.ForecastBundle{
		Latitude:  response.Latitude,
		Longitude: response.Longitude,
		Timezone:  response.Timezone,
		Current: models.CurrentConditions{
			Time:                response.Current.Time,
			Temperature:         response.Current.Temperature2M,
			ApparentTemperature: response.Current.ApparentTemp,
			Humidity:            response.Current.RelativeHumidity2M,
			WindSpeed:           response.Current.WindSpeed10M,
			WindDirection:       response.Current.WindDirection10M,
			WeatherCode:         response.Current.WeatherCode,
		},
		Daily: make([]models.DailyForecast, 0, len(response.Daily.Time)),
	}

	for i := range response.Daily.Time {
		day := models.DailyForecast{Date: response.Daily.Time[i]}
		if i < len(response.Daily.Temperature2MMax) {
			day.MaxTemp = response.Daily.Temperature2MMax[i]
		}
		if i < len(response.Daily.Temperature2MMin) {
			day.MinTemp = response.Daily.Temperature2MMin[i]
		}
		if i < len(response.Daily.WeatherCode) {
			day.WeatherCode = response.Daily.WeatherCode[i]
		}
		if i < len(response.Daily.Sunrise) {
			day.Sunrise = response.Daily.Sunrise[i]
		}
		if i < len(response.Daily.Sunset) {
			day.Sunset = response.Daily.Sunset[i]
		}
		bundle.Daily = append(bundle.Daily, day)
	}

	return bundle, nil
}
