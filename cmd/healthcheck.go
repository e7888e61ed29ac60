package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/iris-session/internal"
	"github.com/iksnae/iris-session/internal/client"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
	healthcheckOffline bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check the configuration, the local storage and the server",
	Long: `Check the health of iris-session by verifying:
  • Configuration (API root)
  • Local storage access
  • Stored API keys
  • Cached session
  • Server reachability (skipped with --offline)

Nothing is written: the cached session is only read, and a missing
storage database is reported rather than created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 IRIS Session Health Check"))
		fmt.Fprintln(out)

		// Step 1: configuration and storage
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration and storage..."))
		a, err := loadApp()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}

		// opening SQLite creates the database, so a missing one is only reported
		if missingDatabase(a.cfg.Storage.Backend, a.cfg.Storage.Path) {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No local storage yet"))
			fmt.Fprintf(out, "   %s is created by `iris-session keys set`\n", a.cfg.Storage.Path)
			a.useStorage(internal.NewMemoryStorage())
		} else {
			storage, err := internal.NewStorage(a.cfg.Storage.Backend, a.cfg.Storage.Path)
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render("❌ Failed to open storage:"), err)
				return fmt.Errorf("health check failed: %w", err)
			}
			a.useStorage(storage)
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s storage opened", a.cfg.Storage.Backend)))
		}
		defer a.Close()

		if healthcheckDetails {
			fmt.Fprintf(out, "   Config: %s\n", a.cfgPath)
			if a.cfg.Storage.Path != "" {
				fmt.Fprintf(out, "   Storage: %s\n", a.cfg.Storage.Path)
			}
			if items, err := a.storage.Items(); err == nil {
				fmt.Fprintf(out, "   Items: %d\n", len(items))
			}
		}
		apiOK := a.cfg.Verify() == nil
		if apiOK {
			fmt.Fprintln(out, successStyle.Render("✅ API root: "+a.cfg.APIRoot))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  API root not configured"))
			fmt.Fprintln(out, "   Set it with `iris-session config set-api <url>`")
		}
		fmt.Fprintln(out)

		// Step 2: keys
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking API keys..."))
		creds, err := a.keys.Keys()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to read keys:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		keysOK := !creds.IsEmpty()
		if keysOK {
			fmt.Fprintln(out, successStyle.Render("✅ API keys stored"))
			if healthcheckDetails {
				fmt.Fprintf(out, "   Public key: %s\n", maskKey(creds.PublicKey))
			}
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No API keys stored"))
			fmt.Fprintln(out, "   Set them with `iris-session keys set <public-key> <private-key>`")
		}
		fmt.Fprintln(out)

		// Step 3: cached session
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking cached session..."))
		session, err := a.sessions.Session()
		var perr *internal.ParseError
		switch {
		case errors.Is(err, internal.ErrNoSession):
			fmt.Fprintln(out, warningStyle.Render("⚠️  No session cached"))
		case errors.As(err, &perr):
			fmt.Fprintln(out, errorStyle.Render("❌ Cached session is corrupt:"), err)
			fmt.Fprintln(out, "   Remove it with `iris-session session clear`")
			return fmt.Errorf("health check failed: %w", err)
		case err != nil:
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to read session:"), err)
			return fmt.Errorf("health check failed: %w", err)
		default:
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Session %s cached", session.ID)))
			if healthcheckDetails {
				printSessionSummary(out, session)
			}
		}
		fmt.Fprintln(out)

		// Step 4: server
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting the server..."))
		switch {
		case healthcheckOffline:
			fmt.Fprintln(out, "   Skipped (--offline)")
		case !apiOK || !keysOK:
			fmt.Fprintln(out, warningStyle.Render("⚠️  Skipped: API root and keys are needed"))
		default:
			if err := pingServer(cmd, a); err != nil {
				fmt.Fprintln(out, errorStyle.Render("❌ Server check failed:"), err)
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Fprintln(out, successStyle.Render("✅ Server accepted the keys"))
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if apiOK && keysOK {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Storage works, but iris-session is not fully configured"))
		}
		return nil
	},
}

// pingServer reads the session from the server without caching it
func pingServer(cmd *cobra.Command, a *app) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	u, err := c.URL(client.SessionURL, nil, nil)
	if err != nil {
		return err
	}
	_, err = c.Do(cmd.Context(), http.MethodGet, u, nil)
	if rerr, ok := internal.IsRequestError(err); ok &&
		(rerr.Status == http.StatusUnauthorized || rerr.Status == http.StatusForbidden) {
		return errors.New("public or private keys are incorrect")
	}
	return err
}

// missingDatabase reports whether backend is SQLite and its database file
// does not exist yet
func missingDatabase(backend, path string) bool {
	if backend != internal.BackendSQLite && backend != "" {
		return false
	}
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}

func printSessionSummary(out io.Writer, session *internal.Session) {
	project := session.CurrentProject
	if project == nil {
		fmt.Fprintln(out, "   No current project")
		return
	}
	fmt.Fprintf(out, "   Project: %s\n", project.CmID)
	if project.CurrentImage == nil {
		fmt.Fprintln(out, "   No current image")
		return
	}
	fmt.Fprintf(out, "   Image: %s\n", project.CurrentImage.CmID)
	if id := project.CurrentImage.CurrentCmAnnotationID; id != nil {
		fmt.Fprintf(out, "   Annotation: %s\n", *id)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().BoolVar(&healthcheckOffline, "offline", false, "Do not contact the server")
}
