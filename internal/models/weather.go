package models

// ForecastBundle is the normalized 7-day forecast for one coordinate pair.
// Immutable once fetched; callers replace it wholesale on every location
// change instead of mutating fields in place.
type ForecastBundle struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Timezone  string            `json:"timezone"`
	Current   CurrentConditions `json:"current"`
	Daily     []DailyForecast   `json:"daily"`
}

type CurrentConditions struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	WindDirection       float64 `json:"wind_direction"`
	WeatherCode         int     `json:"weather_code"`
}

type DailyForecast struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	MaxTemp     float64 `json:"max_temp"`
	MinTemp     float64 `json:"min_temp"`
	Sunrise     string  `json:"sunrise"`
	Sunset      string  `json:"sunset"`
	WeatherCode int     `json:"weather_code"`
}

// ChatRequest is the payload the dashboard sends to POST /api/chat.
// The backend is stateless: every request carries the full forecast
// context and never any prior conversation turns.
type ChatRequest struct {
	WeatherData  *ForecastBundle `json:"weatherData" validate:"required"`
	UserQuestion string          `json:"userQuestion" validate:"required"`
	Location     *ResolvedPlace  `json:"location,omitempty"`
}

type ChatResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer,omitempty"`
	Error   string `json:"error,omitempty"`
}
