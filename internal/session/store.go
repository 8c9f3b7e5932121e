package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/storage"
)

// Store owns the session keys in a storage.Backend. Nothing else reads or
// writes those keys.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now, used to stamp acquisition times and by the
// lifecycle to evaluate the session window.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore wraps backend.
func NewStore(backend storage.Backend, opts ...StoreOption) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Load returns the stored session, or nil when the token or login time is
// missing or the login time is not an integer.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok, err := s.backend.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok {
		return nil, nil
	}

	loginTime, ok, err := s.backend.Get(ctx, KeyLoginTime)
	if err != nil {
		return nil, fmt.Errorf("failed to read login time: %w", err)
	}
	if !ok {
		return nil, nil
	}

	ms, err := strconv.ParseInt(loginTime, 10, 64)
	if err != nil {
		log.Debug().Str("loginTime", loginTime).Msg("stored login time is not an integer")
		return nil, nil
	}

	refresh, _, err := s.backend.Get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}

	return &Session{
		AccessToken:  token,
		AcquiredAt:   time.UnixMilli(ms),
		RefreshToken: refresh,
	}, nil
}

// Save stores accessToken stamped with the current time. A non-empty
// refreshToken is written alongside it; an empty one removes any stored
// refresh token.
func (s *Store) Save(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	values := map[string]string{
		KeyToken:     accessToken,
		KeyLoginTime: strconv.FormatInt(now.UnixMilli(), 10),
	}
	if refreshToken != "" {
		values[KeyRefreshToken] = refreshToken
	}

	if err := s.backend.Set(ctx, values); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if refreshToken == "" {
		if err := s.backend.Delete(ctx, KeyRefreshToken); err != nil {
			return nil, fmt.Errorf("failed to remove refresh token: %w", err)
		}
	}

	log.Debug().
		Time("acquiredAt", now).
		Bool("refreshToken", refreshToken != "").
		Msg("session saved")

	return &Session{
		AccessToken:  accessToken,
		AcquiredAt:   time.UnixMilli(now.UnixMilli()),
		RefreshToken: refreshToken,
	}, nil
}

// Clear removes all session keys.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, KeyToken, KeyLoginTime, KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	log.Debug().Msg("session cleared")

	return nil
}
