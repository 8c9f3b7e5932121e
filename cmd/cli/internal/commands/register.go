package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/client"
)

// RegisterCmd creates a new account.
type RegisterCmd struct {
	FirstName string `help:"First name" required:""`
	LastName  string `help:"Last name" required:""`
	Email     string `help:"Email address" required:""`
	Password  string `help:"Password" required:"" env:"AUTHFRONT_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.newClient()
	if err != nil {
		return err
	}

	user, err := cl.Register(ctx, client.RegisterRequest{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Password:  c.Password,
	})
	if err != nil {
		log.Debug().Err(err).Msg("registration failed")
		fmt.Fprintln(globals.stderr(), client.RegistrationFailedMessage)
		return errors.New("registration failed")
	}

	fmt.Fprintf(globals.stdout(), "Registered %s (user %d).\n", user.Email, user.ID)
	fmt.Fprintln(globals.stdout(), loginHint)

	return nil
}
