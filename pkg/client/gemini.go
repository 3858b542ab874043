package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// GeminiClient forwards a prepared prompt to a hosted language model.
// The key travels as a query parameter, never in the prompt body.
type GeminiClient struct {
	*BaseClient
	endpoint string
	apiKey   string
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func NewGeminiClient(endpoint, apiKey string, config ClientConfig, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		BaseClient: NewBaseClient("language model", config, logger),
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Configured reports whether a provider key is present. Callers must
// check this before Generate; an absent key is a request-time error,
// not a startup crash.
func (c *GeminiClient) Configured() bool {
	return c.apiKey != ""
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt: %w", err)
	}

	fullURL := fmt.Sprintf("%s?key=%s", c.endpoint, url.QueryEscape(c.apiKey))
	data, err := c.Post(ctx, fullURL, body)
	if err != nil {
		c.logger.Warn("Language model call failed", zap.Error(err))
		return "", fmt.Errorf("language model request failed: %w", err)
	}

	var response geminiResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("failed to parse language model response: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("language model returned no candidates")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
