package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaanozd/above-cloud/internal/models"
	"go.uber.org/zap"
)

// IPLocatorClient derives an approximate fix from the caller's IP
// address. Fallback source only; results are never cached.
type IPLocatorClient struct {
	*BaseClient
	endpoint string
}

type ipLocationResponse struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	CountryName string  `json:"country_name"`
}

func NewIPLocatorClient(endpoint string, config ClientConfig, logger *zap.Logger) *IPLocatorClient {
	return &IPLocatorClient{
		BaseClient: NewBaseClient("IP location service", config, logger),
		endpoint:   endpoint,
	}
}

func (c *IPLocatorClient) Locate(ctx context.Context) (models.IPLocation, error) {
	data, err := c.Get(ctx, c.endpoint)
	if err != nil {
		return models.IPLocation{}, fmt.Errorf("failed to locate by IP: %w", err)
	}

	var response ipLocationResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return models.IPLocation{}, fmt.Errorf("failed to parse IP location response: %w", err)
	}

	return models.IPLocation{
		Lat:     response.Latitude,
		Lon:     response.Longitude,
		Name:    response.City,
		Country: response.CountryName,
		Admin1:  response.Region,
	}, nil
}
