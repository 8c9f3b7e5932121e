package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/client"
	"github.com/wolfeidau/authfront/internal/config"
	"github.com/wolfeidau/authfront/internal/session"
	"github.com/wolfeidau/authfront/internal/storage"
)

// ErrRedirect is returned when the session ended and the user has to log in again.
var ErrRedirect = errors.New("login required")

const loginHint = "Run 'authfront login' to sign in."

type Globals struct {
	Debug    bool
	Version  string
	Settings config.Settings

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

// openStore opens the configured backend. The caller closes the returned backend.
func (g *Globals) openStore() (*session.Store, storage.Backend, error) {
	backend, err := storage.Open(g.Settings.Store, g.Settings.StoreDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return session.NewStore(backend), backend, nil
}

func (g *Globals) newClient() (*client.Client, error) {
	cfg := client.DefaultConfig()
	cfg.ServerURL = g.Settings.ServerURL
	cfg.Debug = g.Debug
	if g.Settings.Timeout > 0 {
		cfg.Timeout = g.Settings.Timeout
	}
	if g.Version != "" {
		cfg.UserAgent = "authfront/" + g.Version
	}

	c, err := client.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

// redirect reports a Redirect outcome and returns ErrRedirect.
func (g *Globals) redirect(out session.Outcome) error {
	if out.Cause != nil {
		log.Debug().Err(out.Cause).Msg("session ended")
	}

	if out.Reason != "" {
		fmt.Fprintln(g.stderr(), out.Reason)
	}
	fmt.Fprintln(g.stderr(), loginHint)

	return ErrRedirect
}

func closeBackend(backend storage.Backend) {
	if err := backend.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close session store")
	}
}
