package client

import (
	"context"
	"net/http"
)

// Health checks that the API is alive
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return health, nil
}

// Ready checks that the API can reach its dependencies
func (c *Client) Ready(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, &health); err != nil {
		return nil, err
	}
	return health, nil
}
