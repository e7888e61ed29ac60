package cmd

import (
	"encoding/json"

	"github.com/iksnae/iris-session/internal"
	"github.com/iksnae/iris-session/internal/client"
	"github.com/spf13/cobra"
)

var (
	settingsOffset     int
	settingsMax        int
	settingsID         string
	settingsOldValue   bool
	settingsNewValue   bool
	settingsSyncImages []string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Project settings and administration",
	Long: `Project settings and administration endpoints.

These commands do not touch the cached session: the server's answer is
printed as it was received.`,
}

var settingsUsersCmd = &cobra.Command{
	Use:   "users <project-id>",
	Short: "List the users of a project with their settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page := pageFlags(cmd)
		return runSettings(cmd, "Fetching project users", func(s *client.Settings) (json.RawMessage, error) {
			return s.ProjectUsers(cmd.Context(), args[0], page)
		})
	},
}

var settingsImagesCmd = &cobra.Command{
	Use:   "images <project-id> <user-id>",
	Short: "List the images of a project with a user's settings and progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page := pageFlags(cmd)
		return runSettings(cmd, "Fetching user images", func(s *client.Settings) (json.RawMessage, error) {
			return s.UserImages(cmd.Context(), args[0], args[1], page)
		})
	},
}

var settingsImageAccessCmd = &cobra.Command{
	Use:   "image-access <project-id> <image-id> <user-id>",
	Short: "Change the access of a user to an image",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		change := accessChange()
		return runSettings(cmd, "Changing image access", func(s *client.Settings) (json.RawMessage, error) {
			return s.SetImageAccess(cmd.Context(), args[0], args[1], args[2], change)
		})
	},
}

var settingsProjectAccessCmd = &cobra.Command{
	Use:   "project-access <project-id> <user-id>",
	Short: "Change the access of a user to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		change := accessChange()
		return runSettings(cmd, "Changing project access", func(s *client.Settings) (json.RawMessage, error) {
			return s.SetProjectAccess(cmd.Context(), args[0], args[1], change)
		})
	},
}

var settingsSyncCmd = &cobra.Command{
	Use:   "sync <project-id> <user-id>",
	Short: "Synchronize a user's project with Cytomine",
	Long: `Ask the server to synchronize a user's project with Cytomine.

--images restricts the synchronization to the listed images.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettings(cmd, "Synchronizing project", func(s *client.Settings) (json.RawMessage, error) {
			return s.SynchronizeProject(cmd.Context(), args[0], args[1], settingsSyncImages)
		})
	},
}

// pageFlags returns the page selected by --offset/--max, or nil to let the
// server pick when neither flag was given
func pageFlags(cmd *cobra.Command) *client.Page {
	if !cmd.Flags().Changed("offset") && !cmd.Flags().Changed("max") {
		return nil
	}
	return &client.Page{Offset: settingsOffset, Max: settingsMax}
}

func accessChange() client.AccessChange {
	return client.AccessChange{
		SettingsID: internal.ID(settingsID),
		OldValue:   settingsOldValue,
		NewValue:   settingsNewValue,
	}
}

func runSettings(cmd *cobra.Command, message string, fn func(s *client.Settings) (json.RawMessage, error)) error {
	return withApp(func(a *app) error {
		s, err := a.settings()
		if err != nil {
			return err
		}
		result, err := progress(cmd.Context(), message, func() (json.RawMessage, error) {
			return fn(s)
		})
		if err != nil {
			return requestFailure(message, err)
		}
		if len(result) == 0 {
			internal.PrintSuccess(cmd.OutOrStdout(), "Done")
			return nil
		}
		return render(cmd.OutOrStdout(), result)
	})
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsUsersCmd, settingsImagesCmd, settingsImageAccessCmd, settingsProjectAccessCmd, settingsSyncCmd)

	for _, c := range []*cobra.Command{settingsUsersCmd, settingsImagesCmd} {
		c.Flags().IntVar(&settingsOffset, "offset", 0, "Index of the first entry")
		c.Flags().IntVar(&settingsMax, "max", 0, "Maximum number of entries (0: server default)")
	}

	for _, c := range []*cobra.Command{settingsImageAccessCmd, settingsProjectAccessCmd} {
		c.Flags().StringVar(&settingsID, "settings", "", "Id of the settings record to change")
		c.Flags().BoolVar(&settingsOldValue, "old", false, "Current access value")
		c.Flags().BoolVar(&settingsNewValue, "new", false, "Access value to set")
		_ = c.MarkFlagRequired("settings")
	}

	settingsSyncCmd.Flags().StringSliceVar(&settingsSyncImages, "images", nil, "Image ids to synchronize (default: all)")
}
