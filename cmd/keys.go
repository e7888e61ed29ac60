package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var keysNoFetch bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the Cytomine API keys",
	Long: `Manage the Cytomine API key pair sent with every request.

The keys are kept in local storage. Clearing them also removes the cached
session, which belongs to the user they identify.`,
}

var keysSetCmd = &cobra.Command{
	Use:   "set <public-key> <private-key>",
	Short: "Store the API keys and fetch the session for them",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
		if pub == "" || priv == "" {
			return errors.New("the keys must not be empty")
		}

		return withApp(func(a *app) error {
			if err := a.keys.SetKeys(pub, priv); err != nil {
				return err
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Keys saved")

			if keysNoFetch {
				return nil
			}

			syncer, err := a.synchronizer()
			if err != nil {
				internal.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("Session not fetched: %v", err))
				return nil
			}
			session, err := progress(cmd.Context(), "Fetching session", func() (*internal.Session, error) {
				return syncer.FetchSession(cmd.Context())
			})
			if rerr, ok := internal.IsRequestError(err); ok &&
				(rerr.Status == http.StatusUnauthorized || rerr.Status == http.StatusForbidden) {
				return errors.New("public or private keys are incorrect")
			}
			if err != nil {
				return fmt.Errorf("cannot fetch session: %w", err)
			}
			internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Session %s cached", session.ID))
			return nil
		})
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API keys (private key masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			creds, err := a.keys.Keys()
			if err != nil {
				return err
			}
			creds.PrivateKey = maskKey(creds.PrivateKey)
			return render(cmd.OutOrStdout(), creds)
		})
	},
}

var keysClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the API keys and the cached session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.keys.ClearKeys(); err != nil {
				return err
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Keys and session cleared")
			return nil
		})
	},
}

// maskKey keeps the first four characters of a key
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysSetCmd, keysShowCmd, keysClearCmd)
	keysSetCmd.Flags().BoolVar(&keysNoFetch, "no-fetch", false, "Only store the keys, do not fetch the session")
}
