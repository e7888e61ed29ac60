package cmd

import (
	"errors"
	"fmt"

	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Fetch and inspect the cached IRIS session",
}

var sessionFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the session from the server and replace the cached one",
	Long: `Fetch the session of the user identified by the stored keys and replace
the cached session with it. Changes made from another client (browser tab,
other machine) are picked up this way.

If the server rejects the request the cached session is removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			syncer, err := a.synchronizer()
			if err != nil {
				return err
			}
			session, err := progress(cmd.Context(), "Fetching session", func() (*internal.Session, error) {
				return syncer.FetchSession(cmd.Context())
			})
			if err != nil {
				return requestFailure("cannot fetch session", err)
			}
			return render(cmd.OutOrStdout(), session)
		})
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			session, err := a.sessions.Session()
			if err != nil {
				return noSessionHint(err)
			}
			return render(cmd.OutOrStdout(), session)
		})
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached session (the keys are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.sessions.SetSession(nil); err != nil {
				return err
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Session cleared")
			return nil
		})
	},
}

// noSessionHint tells the user how to get a session when none is cached
func noSessionHint(err error) error {
	if errors.Is(err, internal.ErrNoSession) {
		return fmt.Errorf("%w (run `iris-session session fetch` first)", err)
	}
	return err
}

// requestFailure prefixes err with what failed, using the server's message
// when the server sent one
func requestFailure(what string, err error) error {
	if rerr, ok := internal.IsRequestError(err); ok {
		if msg := rerr.Message(); msg != "" {
			return fmt.Errorf("%s: %s (HTTP %d)", what, msg, rerr.Status)
		}
	}
	return fmt.Errorf("%s: %w", what, noSessionHint(err))
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionFetchCmd, sessionShowCmd, sessionClearCmd)
}
