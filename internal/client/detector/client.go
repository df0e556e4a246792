// Package detector provides a client for the zombie detection API.
package detector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"zombie-detector/internal/config"
	"zombie-detector/internal/model"
)

// Client is a client for the zombie detection REST API.
type Client struct {
	endpoint   string
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewClient creates a new detection API client.
func NewClient(endpoint string, retryCfg *config.RetryConfig, logger zerolog.Logger) *Client {
	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8).
		AddRetryCondition(retryCondition)

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "detector-client").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}
	return false
}

// Detect submits a host batch and returns the detection result.
func (c *Client) Detect(ctx context.Context, hosts []*model.HostRecord) (*model.DetectionResult, error) {
	var result model.DetectionResult
	var apiErr APIError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(hosts).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/v1/zombie-detection")
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &apiErr
	}

	c.logger.Debug().
		Int("hosts", len(result.Hosts)).
		Msg("detection completed")
	return &result, nil
}

// Health checks the API server's health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&health).
		Get("/api/v1/health")
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return &health, nil
}

// States retrieves the active state policy and alias table.
func (c *Client) States(ctx context.Context) (*StatesResponse, error) {
	var states StatesResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&states).
		Get("/api/v1/states")
	if err != nil {
		return nil, fmt.Errorf("states request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("states returned status %d", resp.StatusCode())
	}

	return &states, nil
}

// KilledSince retrieves the killed zombies of the trailing window.
func (c *Client) KilledSince(ctx context.Context, hours int) (*model.KilledSummary, error) {
	var summary model.KilledSummary
	var apiErr APIError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("since_hours", fmt.Sprintf("%d", hours)).
		SetResult(&summary).
		SetError(&apiErr).
		Get("/api/v1/zombies/killed")
	if err != nil {
		return nil, fmt.Errorf("killed request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &apiErr
	}

	return &summary, nil
}

// CheckKilled checks whether a specific host is in the killed registry.
func (c *Client) CheckKilled(ctx context.Context, zombieID string) (*KilledCheckResponse, error) {
	var check KilledCheckResponse
	var apiErr APIError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", zombieID).
		SetResult(&check).
		SetError(&apiErr).
		Get("/api/v1/zombies/{id}/killed")
	if err != nil {
		return nil, fmt.Errorf("killed check request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &apiErr
	}

	return &check, nil
}

// Lifecycle retrieves the full lifecycle of a host id.
func (c *Client) Lifecycle(ctx context.Context, zombieID string) (*model.Lifecycle, error) {
	var lc model.Lifecycle
	var apiErr APIError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", zombieID).
		SetResult(&lc).
		SetError(&apiErr).
		Get("/api/v1/zombies/{id}/lifecycle")
	if err != nil {
		return nil, fmt.Errorf("lifecycle request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &apiErr
	}

	return &lc, nil
}

// Cleanup triggers a retention pass on the server.
func (c *Client) Cleanup(ctx context.Context, daysToKeep int) (*CleanupResponse, error) {
	var result CleanupResponse
	var apiErr APIError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("days_to_keep", fmt.Sprintf("%d", daysToKeep)).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/v1/zombies/cleanup")
	if err != nil {
		return nil, fmt.Errorf("cleanup request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &apiErr
	}

	return &result, nil
}
