package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kaanozd/above-cloud/internal/models"
	"go.uber.org/zap"
)

const searchResultLimit = 5

// GeocodingClient performs forward search against the Open-Meteo
// geocoding API: free-text place name to candidate coordinates.
type GeocodingClient struct {
	*BaseClient
	baseURL string
}

type geocodingSearchResponse struct {
	Results []struct {
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Name        string  `json:"name"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"`
		Admin2      string  `json:"admin2"`
		Population  int64   `json:"population"`
	} `json:"results"`
}

func NewGeocodingClient(baseURL string, config ClientConfig, logger *zap.Logger) *GeocodingClient {
	return &GeocodingClient{
		BaseClient: NewBaseClient("geocoding service", config, logger),
		baseURL:    baseURL,
	}
}

// Search returns up to five candidates in provider relevance order. An
// empty match is not an error; transport and status failures are.
func (c *GeocodingClient) Search(ctx context.Context, name string) ([]models.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", fmt.Sprintf("%d", searchResultLimit))
	params.Set("language", "en")
	params.Set("format", "json")

	data, err := c.Get(ctx, fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}

	var response geocodingSearchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	candidates := make([]models.PlaceCandidate, 0, len(response.Results))
	for _, r := range response.Results {
		candidates = append(candidates, models.PlaceCandidate{
			Lat:         r.Latitude,
			Lon:         r.Longitude,
			Name:        r.Name,
			Country:     r.Country,
			CountryCode: r.CountryCode,
			Admin1:      r.Admin1,
			Admin2:      r.Admin2,
			Population:  r.Population,
		})
	}

	return candidates, nil
}
