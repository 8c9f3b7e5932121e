package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/authfront/internal/session"
)

// LogoutCmd discards the stored session.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	store, backend, err := globals.openStore()
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	// Logout never talks to the server, so no fetcher or refresher is needed.
	manager := session.NewManager(store, nil, nil)

	if _, err := manager.Logout(ctx, session.NewView()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Fprintln(globals.stdout(), "Logged out.")
	fmt.Fprintln(globals.stdout(), loginHint)

	return nil
}
