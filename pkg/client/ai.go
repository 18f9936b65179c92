package client

import (
	"context"
	"net/http"
)

type textRequest struct {
	Text string `json:"text"`
}

// Categorize assigns a category to a task. It consumes one AI use.
func (c *Client) Categorize(ctx context.Context, text string) (*Categorization, error) {
	var out Categorization
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/ai/categorize", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suggest proposes follow-up tasks. It consumes one AI use.
func (c *Client) Suggest(ctx context.Context, text string) (*Suggestions, error) {
	var out Suggestions
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/ai/suggest", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
