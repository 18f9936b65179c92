package client

import (
	"context"
	"net/http"
)

// Plans lists the purchasable plans
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/billing/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Checkout starts a hosted payment for plan
func (c *Client) Checkout(ctx context.Context, plan string) (*CheckoutSession, error) {
	req := map[string]string{"plan": plan}

	var sess CheckoutSession
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/billing/checkout", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
