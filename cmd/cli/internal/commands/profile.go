package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/session"
)

// ProfileCmd shows the signed-in user, refreshing the session if needed.
type ProfileCmd struct{}

func (c *ProfileCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.newClient()
	if err != nil {
		return err
	}

	store, backend, err := globals.openStore()
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	manager := session.NewManager(store, cl, cl)

	// Cancelling the command detaches the view so a late reply is ignored.
	view := session.NewView()
	stop := context.AfterFunc(ctx, view.Detach)
	defer stop()

	out, err := manager.Run(ctx, view)
	switch {
	case errors.Is(err, session.ErrViewDetached):
		return fmt.Errorf("profile cancelled: %w", context.Cause(ctx))
	case err != nil && !out.IsRedirect():
		return err
	case err != nil:
		log.Warn().Err(err).Msg("session could not be fully cleared")
	}

	if out.IsRedirect() {
		return globals.redirect(out)
	}

	renderProfile(globals.stdout(), out.Identity)

	return nil
}

func renderProfile(w io.Writer, identity *session.Identity) {
	fmt.Fprintf(w, "[%s] %s\n\n", identity.Initials(), identity.FullName())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Role:\t%s\n", identity.RoleName())
	fmt.Fprintf(tw, "Email:\t%s\n", identity.Email)
	fmt.Fprintf(tw, "User ID:\t%d\n", identity.ID)
	tw.Flush()
}
