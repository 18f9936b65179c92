package client

import (
	"context"
	"net/http"
)

// Quota returns whether the next AI operation would be allowed
func (c *Client) Quota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/quota", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Subscription returns the subscription and usage summary
func (c *Client) Subscription(ctx context.Context) (*SubscriptionStatus, error) {
	var s SubscriptionStatus
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/subscription", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
