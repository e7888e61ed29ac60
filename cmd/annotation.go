package cmd

import (
	"fmt"

	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var annotationCmd = &cobra.Command{
	Use:   "annotation",
	Short: "Select the current annotation of the current image",
	Long: `Select the current annotation of the current image.

The selection is local: it is saved in the cached session and sent to the
server with the next project update.`,
}

var annotationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the id of the current annotation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			id, err := a.sessions.CurrentAnnotationID()
			if err != nil {
				return noSessionHint(err)
			}
			if id == nil {
				internal.PrintInfo(cmd.OutOrStdout(), "No current annotation")
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		})
	},
}

var annotationSetCmd = &cobra.Command{
	Use:   "set <annotation-id>",
	Short: "Make an annotation the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := internal.ID(args[0])
		if id.IsZero() {
			return fmt.Errorf("annotation id must not be empty")
		}
		return withApp(func(a *app) error {
			if err := a.sessions.SetCurrentAnnotationID(&id); err != nil {
				return noSessionHint(err)
			}
			internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Current annotation set to %s", id))
			return nil
		})
	},
}

var annotationClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Unselect the current annotation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.sessions.SetCurrentAnnotationID(nil); err != nil {
				return noSessionHint(err)
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Current annotation cleared")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(annotationCmd)
	annotationCmd.AddCommand(annotationShowCmd, annotationSetCmd, annotationClearCmd)
}
