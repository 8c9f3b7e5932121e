package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrSessionExpired is the cause of a Redirect when the stored session is
	// missing, malformed or older than SessionWindow.
	ErrSessionExpired = errors.New("stored session missing or expired")

	// ErrNoRefreshToken is the cause of a Redirect when the identity request
	// failed and there is nothing to refresh with.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrEmptyAccessToken is the cause of a Redirect when a refresh reply had no access token.
	ErrEmptyAccessToken = errors.New("refresh returned no access token")
)

// IdentityFetcher performs the protected identity request with a bearer token.
type IdentityFetcher interface {
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
}

// Manager runs the session lifecycle for views.
type Manager struct {
	store     *Store
	fetcher   IdentityFetcher
	refresher Refresher
	metrics   *telemetry.Metrics
}

// NewManager creates a lifecycle manager. store is the only component that
// touches session storage.
func NewManager(store *Store, fetcher IdentityFetcher, refresher Refresher) *Manager {
	return &Manager{
		store:     store,
		fetcher:   fetcher,
		refresher: refresher,
		metrics:   telemetry.GetMetrics(),
	}
}

type state int

const (
	stateLoad state = iota
	stateFetch
	stateRefresh
)

func (s state) String() string {
	switch s {
	case stateLoad:
		return "load"
	case stateFetch:
		return "fetch"
	case stateRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// run holds the state of one lifecycle run.
type run struct {
	m       *Manager
	view    *View
	session *Session
	cause   error
}

// step advances the run. A non-nil Outcome is terminal; a non-nil error
// aborts the run without an outcome.
type step func(ctx context.Context) (state, *Outcome, error)

// Run resolves the view's identity from the stored session.
//
// It returns ErrViewDetached, with a zero Outcome, when the view detached
// before the result could be applied; nothing is written to the store after
// that point. A Redirect is only returned after the store has been cleared;
// if clearing fails the Redirect is returned together with the error.
func (m *Manager) Run(ctx context.Context, view *View) (Outcome, error) {
	if view == nil {
		view = NewView()
	}

	if !view.Active() {
		return Outcome{}, ErrViewDetached
	}

	r := &run{m: m, view: view}
	steps := map[state]step{
		stateLoad:    r.load,
		stateFetch:   r.fetch,
		stateRefresh: r.refreshAndRetry,
	}

	current := stateLoad
	for {
		log.Debug().Stringer("state", current).Msg("session lifecycle")

		next, out, err := steps[current](ctx)
		if err != nil {
			return m.discard(ctx, current, err)
		}
		if out != nil {
			return r.finish(ctx, current, *out)
		}
		current = next
	}
}

// Logout clears the session and detaches view, so any run still in flight
// for it completes without effect. It always yields a Redirect with no reason.
func (m *Manager) Logout(ctx context.Context, view *View) (Outcome, error) {
	if view != nil {
		view.Detach()
	}

	m.metrics.LogoutsTotal.Add(ctx, 1)

	if err := m.store.Clear(ctx); err != nil {
		return Redirect("", err), err
	}

	log.Info().Msg("logged out")

	return Redirect("", nil), nil
}

// S0: load and validate the stored session.
func (r *run) load(ctx context.Context) (state, *Outcome, error) {
	s, err := r.m.store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load session")
		return redirect(ReasonExpired, errors.Join(ErrSessionExpired, err))
	}

	if !IsValid(s, r.m.store.Now()) {
		return redirect(ReasonExpired, ErrSessionExpired)
	}

	r.session = s
	return stateFetch, nil, nil
}

// S1: fetch the identity with the stored access token.
func (r *run) fetch(ctx context.Context) (state, *Outcome, error) {
	id, err := r.fetchIdentity(ctx, r.session.AccessToken, "initial")
	if err != nil {
		log.Debug().Err(err).Msg("identity request failed, trying refresh")
		r.cause = err
		return stateRefresh, nil, nil
	}

	return resolved(id)
}

// S2: exchange the refresh token once, store the new access token and
// retry the identity request once.
func (r *run) refreshAndRetry(ctx context.Context) (state, *Outcome, error) {
	if !r.session.HasRefreshToken() {
		return redirect(ReasonUnauthorized, fmt.Errorf("%w: %w", ErrNoRefreshToken, r.cause))
	}

	tokens, err := r.m.refresher.Refresh(ctx, r.session.RefreshToken)
	if err == nil && (tokens == nil || tokens.AccessToken == "") {
		err = ErrEmptyAccessToken
	}
	if err != nil {
		r.m.metrics.RefreshAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		log.Debug().Err(err).Msg("refresh failed")
		return redirect(ReasonUnauthorized, err)
	}
	r.m.metrics.RefreshAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))

	// Keep the current refresh token unless the server rotated it.
	refreshToken := tokens.RefreshToken
	if refreshToken == "" {
		refreshToken = r.session.RefreshToken
	}

	var saved *Session
	err = r.view.apply(func() error {
		s, err := r.m.store.Save(ctx, tokens.AccessToken, refreshToken)
		saved = s
		return err
	})
	if errors.Is(err, ErrViewDetached) {
		return stateRefresh, nil, err
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to store refreshed token")
		return redirect(ReasonUnauthorized, err)
	}
	r.session = saved

	id, err := r.fetchIdentity(ctx, saved.AccessToken, "retry")
	if err != nil {
		log.Debug().Err(err).Msg("identity request failed after refresh")
		return redirect(ReasonUnauthorized, err)
	}

	return resolved(id)
}

func (r *run) fetchIdentity(ctx context.Context, accessToken, attempt string) (*Identity, error) {
	started := time.Now()
	id, err := r.m.fetcher.FetchIdentity(ctx, accessToken)

	result := "ok"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("attempt", attempt),
		attribute.String("result", result),
	)
	r.m.metrics.IdentityFetchTotal.Add(ctx, 1, attrs)
	r.m.metrics.IdentityFetchDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)

	return id, err
}

// finish applies the terminal outcome through the view: a Redirect clears
// the store first, a Resolved only checks attachment.
func (r *run) finish(ctx context.Context, reached state, out Outcome) (Outcome, error) {
	var mutate func() error
	if out.IsRedirect() {
		mutate = func() error { return r.m.store.Clear(ctx) }
	}

	err := r.view.apply(mutate)
	if errors.Is(err, ErrViewDetached) {
		return r.m.discard(ctx, reached, err)
	}

	r.m.metrics.LifecycleRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", out.Kind.String()),
		attribute.String("state", reached.String()),
	))

	if err != nil {
		log.Error().Err(err).Msg("failed to clear session before redirect")
		out.Cause = errors.Join(out.Cause, err)
		return out, err
	}

	log.Debug().
		Stringer("outcome", out.Kind).
		Stringer("state", reached).
		AnErr("cause", out.Cause).
		Msg("session lifecycle finished")

	return out, nil
}

func (m *Manager) discard(ctx context.Context, reached state, err error) (Outcome, error) {
	m.metrics.LifecycleRunsDiscarded.Add(ctx, 1, metric.WithAttributes(attribute.String("state", reached.String())))
	log.Debug().Stringer("state", reached).Msg("view detached, ignoring lifecycle result")
	return Outcome{}, err
}

func redirect(reason string, cause error) (state, *Outcome, error) {
	out := Redirect(reason, cause)
	return 0, &out, nil
}

func resolved(id *Identity) (state, *Outcome, error) {
	out := Resolved(id)
	return 0, &out, nil
}
