package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kaanozd/above-cloud/internal/models"
)

// Client talks to the dashboard backend. It holds no state beyond the
// connection settings; all session state lives in Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetForecast requests a fresh 7-day bundle. Never cached on either
// side: each call is one backend round trip.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastBundle, error) {
	u := fmt.Sprintf("%s/api/weather?lat=%f&lon=%f", c.baseURL, lat, lon)

	var bundle models.ForecastBundle
	if err := c.getJSON(ctx, u, &bundle); err != nil {
		return nil, fmt.Errorf("weather service unreachable: %w", err)
	}
	return &bundle, nil
}

func (c *Client) SearchLocations(ctx context.Context, name string) ([]models.PlaceCandidate, error) {
	u := fmt.Sprintf("%s/api/locations/search?name=%s", c.baseURL, url.QueryEscape(name))

	var payload struct {
		Results []models.PlaceCandidate `json:"results"`
	}
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *Client) ReverseLocation(ctx context.Context, lat, lon float64) (models.ResolvedPlace, error) {
	u := fmt.Sprintf("%s/api/locations/reverse?lat=%f&lon=%f", c.baseURL, lat, lon)

	var place models.ResolvedPlace
	if err := c.getJSON(ctx, u, &place); err != nil {
		return models.ResolvedPlace{}, err
	}
	return place, nil
}

func (c *Client) IPLocation(ctx context.Context) (models.IPLocation, error) {
	u := fmt.Sprintf("%s/api/locations/ip", c.baseURL)

	var loc models.IPLocation
	if err := c.getJSON(ctx, u, &loc); err != nil {
		return models.IPLocation{}, fmt.Errorf("could not determine your location by IP: %w", err)
	}
	return loc, nil
}

// Chat posts the forecast context and question. A decoded response with
// Success=false is returned as-is; the caller classifies the error.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return models.ChatResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.ChatResponse{}, err
	}
	defer resp.Body.Close()

	var chatResp models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return models.ChatResponse{}, fmt.Errorf("backend error: status %d", resp.StatusCode)
	}
	return chatResp, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			return fmt.Errorf("backend error: %s", payload.Error)
		}
		return fmt.Errorf("backend error: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
