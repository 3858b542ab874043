package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kaanozd/above-cloud/internal/models"
	"go.uber.org/zap"
)

// NominatimClient performs reverse lookups against a Nominatim
// (OpenStreetMap) endpoint: coordinates to administrative address.
type NominatimClient struct {
	*BaseClient
	baseURL string
}

func NewNominatimClient(baseURL string, config ClientConfig, logger *zap.Logger) *NominatimClient {
	return &NominatimClient{
		BaseClient: NewBaseClient("reverse geocoding service", config, logger),
		baseURL:    baseURL,
	}
}

func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (models.ReverseAddress, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")
	params.Set("accept-language", "en")

	data, err := c.Get(ctx, fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode()))
	if err != nil {
		return models.ReverseAddress{}, fmt.Errorf("failed to reverse geocode: %w", err)
	}

	var response models.ReverseAddress
	if err := json.Unmarshal(data, &response); err != nil {
		return models.ReverseAddress{}, fmt.Errorf("failed to parse reverse geocoding response: %w", err)
	}

	return response, nil
}
