package client

import (
	"context"
	"net/http"
)

// CreateAccount signs up a free-tier account and keeps its access token
func (c *Client) CreateAccount(ctx context.Context) (*CreatedAccount, error) {
	var resp CreatedAccount
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/accounts", nil, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Tokens.AccessToken)
	return &resp, nil
}

// Me returns the authenticated account
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var a Account
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/accounts/me", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Refresh exchanges a refresh token for a new pair and keeps the access token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	req := map[string]string{"refreshToken": refreshToken}

	var t Tokens
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", req, &t); err != nil {
		return nil, err
	}
	c.SetToken(t.AccessToken)
	return &t, nil
}
