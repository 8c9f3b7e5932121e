package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wolfeidau/authfront/internal/session"
)

// Messages shown to the user; the underlying cause is only logged.
const (
	LoginFailedMessage        = "Login failed. Please check your credentials."
	RegistrationFailedMessage = "Registration failed. Please try again."
)

var (
	ErrLoginFailed        = errors.New("login failed")
	ErrRegistrationFailed = errors.New("registration failed")
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisteredUser is the record returned by POST /register.
type RegisteredUser struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Login exchanges credentials for tokens with POST /login. Failures match
// ErrLoginFailed and wrap the underlying cause.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Tokens, error) {
	req, err := c.newRequest(ctx, http.MethodPost, PathLogin, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	var tokens session.Tokens
	if err := c.do(c.httpClient(c.transport), req, &tokens); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, errEmptyToken)
	}

	return &tokens, nil
}

// Register creates an account with POST /register. Failures match
// ErrRegistrationFailed and wrap the underlying cause.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*RegisteredUser, error) {
	req, err := c.newRequest(ctx, http.MethodPost, PathRegister, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	var user RegisteredUser
	if err := c.do(c.httpClient(c.transport), req, &user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	return &user, nil
}
