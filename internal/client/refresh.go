package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/wolfeidau/authfront/internal/session"
)

var _ session.Refresher = (*Client)(nil)

var errEmptyToken = errors.New("reply carried no token")

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges refreshToken for a new access token with POST /refresh.
// Every failure is returned as a *RefreshError.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*session.Tokens, error) {
	req, err := c.newRequest(ctx, http.MethodPost, PathRefresh, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, &RefreshError{Cause: err}
	}

	var tokens session.Tokens
	if err := c.do(c.httpClient(c.transport), req, &tokens); err != nil {
		return nil, &RefreshError{Cause: err}
	}

	if tokens.AccessToken == "" {
		return nil, &RefreshError{Cause: errEmptyToken}
	}

	return &tokens, nil
}
