package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/authfront/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{ServerURL: srv.URL, Timeout: 2 * time.Second, UserAgent: "authfront/test"})
	require.NoError(t, err)

	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	t.Run("requires server URL", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		_, err := New(Config{ServerURL: "ftp://example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheme must be http or https")
	})

	t.Run("applies defaults", func(t *testing.T) {
		c, err := New(Config{ServerURL: "http://localhost:3000/"})
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, c.timeout)
		assert.Equal(t, "authfront/dev", c.userAgent)
		assert.Equal(t, "http://localhost:3000/me", c.endpoint(PathMe))
	})
}

func TestFetchIdentity(t *testing.T) {
	t.Run("sends bearer token and decodes identity", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, PathMe, r.URL.Path)
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			assert.Equal(t, "authfront/test", r.Header.Get("User-Agent"))

			id, err := uuid.Parse(r.Header.Get("X-Request-Id"))
			assert.NoError(t, err)
			assert.Equal(t, uuid.Version(7), id.Version())

			writeJSON(w, http.StatusOK, map[string]any{
				"id": 42, "first_name": "Ada", "last_name": "Lovelace",
				"email": "ada@example.com", "role": "Admin",
			})
		}))

		identity, err := c.FetchIdentity(context.Background(), "access-1")
		require.NoError(t, err)
		assert.Equal(t, &session.Identity{
			ID: 42, FirstName: "Ada", LastName: "Lovelace",
			Email: "ada@example.com", Role: "Admin",
		}, identity)
	})

	t.Run("non-2xx is unauthorized", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, map[string]string{"error": "invalid token"})
			}))

			_, err := c.FetchIdentity(context.Background(), "bad")
			require.ErrorIs(t, err, ErrUnauthorized)
			assert.NotErrorIs(t, err, ErrNetwork)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, status, statusErr.StatusCode)
			assert.Equal(t, "invalid token", statusErr.Message)
		}
	})

	t.Run("undecodable body is a network error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))

		_, err := c.FetchIdentity(context.Background(), "access-1")
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("timeout is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)

		c, err := New(Config{ServerURL: srv.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		_, err = c.FetchIdentity(context.Background(), "access-1")
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(Config{ServerURL: url})
		require.NoError(t, err)

		_, err = c.FetchIdentity(context.Background(), "access-1")
		require.ErrorIs(t, err, ErrNetwork)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("posts refresh token and returns tokens", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, PathRefresh, r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))

			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"refresh_token": "refresh-1"}, body)

			writeJSON(w, http.StatusOK, map[string]string{"token": "access-2"})
		}))

		tokens, err := c.Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)
		assert.Equal(t, "access-2", tokens.AccessToken)
		assert.Empty(t, tokens.RefreshToken)
	})

	t.Run("returns rotated refresh token", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"token": "access-2", "refresh_token": "refresh-2"})
		}))

		tokens, err := c.Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)
		assert.Equal(t, "refresh-2", tokens.RefreshToken)
	})

	tests := []struct {
		name    string
		handler http.HandlerFunc
		cause   error
	}{
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "expired"})
			},
			cause: ErrUnauthorized,
		},
		{
			name: "empty token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"token": ""})
			},
			cause: errEmptyToken,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
			cause: ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.Refresh(context.Background(), "refresh-1")
			require.ErrorIs(t, err, ErrRefreshFailed)
			require.ErrorIs(t, err, tt.cause)

			var refreshErr *RefreshError
			require.ErrorAs(t, err, &refreshErr)
			assert.True(t, errors.Is(refreshErr.Cause, tt.cause))
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("returns tokens", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, PathLogin, r.URL.Path)

			var body loginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, loginRequest{Email: "ada@example.com", Password: "hunter2"}, body)

			writeJSON(w, http.StatusOK, map[string]string{"token": "access-1", "refresh_token": "refresh-1"})
		}))

		tokens, err := c.Login(context.Background(), "ada@example.com", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, &session.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}, tokens)
	})

	t.Run("bad credentials", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}))

		_, err := c.Login(context.Background(), "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrLoginFailed)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing token", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{})
		}))

		_, err := c.Login(context.Background(), "ada@example.com", "hunter2")
		require.ErrorIs(t, err, ErrLoginFailed)
	})
}

func TestRegister(t *testing.T) {
	t.Run("creates user", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, PathRegister, r.URL.Path)

			var body RegisterRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ada", body.FirstName)

			writeJSON(w, http.StatusCreated, map[string]any{
				"id": 7, "first_name": "Ada", "last_name": "Lovelace",
				"email": "ada@example.com", "password": "$2a$10$hash",
			})
		}))

		user, err := c.Register(context.Background(), RegisterRequest{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "hunter2",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
	})

	t.Run("conflict", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		}))

		_, err := c.Register(context.Background(), RegisterRequest{Email: "ada@example.com"})
		require.ErrorIs(t, err, ErrRegistrationFailed)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	})
}

func TestErrorTypes(t *testing.T) {
	err := &RefreshError{Cause: ErrNetwork}
	assert.Equal(t, "refresh failed: network error", err.Error())
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, ErrNetwork)

	assert.Equal(t, "server returned HTTP 401", (&StatusError{StatusCode: 401}).Error())
	assert.Equal(t, "server returned HTTP 409: taken", (&StatusError{StatusCode: 409, Message: "taken"}).Error())
}
