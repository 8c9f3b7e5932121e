package client

import (
	"context"
	"net/http"

	"github.com/wolfeidau/authfront/internal/session"
	"golang.org/x/oauth2"
)

var _ session.IdentityFetcher = (*Client)(nil)

// FetchIdentity calls GET /me with accessToken as the bearer credential.
//
// A non-2xx reply returns an error wrapping ErrUnauthorized; anything that
// prevents a usable reply returns an error wrapping ErrNetwork.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*session.Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, PathMe, nil)
	if err != nil {
		return nil, err
	}

	hc := c.httpClient(&oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: accessToken,
			TokenType:   "Bearer",
		}),
		Base: c.transport,
	})

	var identity session.Identity
	if err := c.do(hc, req, &identity); err != nil {
		return nil, err
	}

	return &identity, nil
}
