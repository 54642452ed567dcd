package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	httpClient "github.com/Alias1177/HeartRisk/internal/platform/http"
	"github.com/Alias1177/HeartRisk/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client calls the heart disease prediction service
type Client struct {
	url        string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new prediction client
type ClientOptions struct {
	URL             string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new prediction service client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	return &Client{
		url:        options.URL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "predictor_client").Logger(),
	}
}

// Predict posts the request as JSON and decodes the classification
func (c *Client) Predict(ctx context.Context, payload models.PredictionRequest) (*models.PredictionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("url", c.url).RawJSON("payload", body).Msg("Requesting prediction")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var result models.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error().Err(err).Str("response", string(data)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	c.logger.Debug().Str("risk", result.Risk).Float64("probability", result.Probability).Msg("Prediction received")
	return &result, nil
}
