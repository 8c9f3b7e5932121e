package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/client"
	"github.com/wolfeidau/authfront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LoginCmd exchanges credentials for a session.
type LoginCmd struct {
	Email    string `help:"Email address" required:""`
	Password string `help:"Password" required:"" env:"AUTHFRONT_PASSWORD"`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.newClient()
	if err != nil {
		return err
	}

	store, backend, err := globals.openStore()
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	metrics := telemetry.GetMetrics()

	tokens, err := cl.Login(ctx, c.Email, c.Password)
	if err != nil {
		metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failure")))
		log.Debug().Err(err).Msg("login failed")
		fmt.Fprintln(globals.stderr(), client.LoginFailedMessage)
		return errors.New("login failed")
	}

	if _, err := store.Save(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "success")))
	log.Info().Str("email", c.Email).Msg("logged in")

	fmt.Fprintf(globals.stdout(), "Logged in as %s.\n", c.Email)

	return nil
}
