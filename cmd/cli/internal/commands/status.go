package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/wolfeidau/authfront/internal/session"
)

// StatusCmd describes the stored session without contacting the server.
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	store, backend, err := globals.openStore()
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	sess, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	w := globals.stdout()

	if sess == nil {
		fmt.Fprintln(w, "No session found.")
		fmt.Fprintln(w, loginHint)
		return nil
	}

	now := store.Now()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Logged in at:\t%s\n", sess.AcquiredAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Age:\t%s\n", sess.Age(now).Round(time.Second))
	fmt.Fprintf(tw, "Remaining:\t%s\n", sess.Remaining(now).Round(time.Second))
	fmt.Fprintf(tw, "Valid:\t%t\n", session.IsValid(sess, now))
	fmt.Fprintf(tw, "Refresh token:\t%t\n", sess.HasRefreshToken())

	if claims, err := session.ParseClaims(sess.AccessToken); err == nil {
		if claims.Subject != "" {
			fmt.Fprintf(tw, "Subject:\t%s\n", claims.Subject)
		}
		if claims.Role != "" {
			fmt.Fprintf(tw, "Role:\t%s\n", claims.Role)
		}
		if exp, ok := claims.Expiry(); ok {
			fmt.Fprintf(tw, "Token expires:\t%s\n", exp.Format(time.RFC3339))
		}
	} else if globals.Debug {
		fmt.Fprintf(globals.stderr(), "access token is not a JWT: %v\n", err)
	}

	return tw.Flush()
}
