package cmd

import (
	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Work with the current image of the current project",
}

var imageTouchCmd = &cobra.Command{
	Use:   "touch <project-id> <image-id>",
	Short: "Open an image and make it the current image",
	Long: `Tell the server that the image is now the active one of the session and
cache the image it returns as the current image of the current project.

If the server rejects the request the cached current image is cleared.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			syncer, err := a.synchronizer()
			if err != nil {
				return err
			}
			image, err := progress(cmd.Context(), "Touching image "+args[1], func() (*internal.Image, error) {
				return syncer.TouchImage(cmd.Context(), args[0], args[1])
			})
			if err != nil {
				return requestFailure("cannot touch image", err)
			}
			return render(cmd.OutOrStdout(), image)
		})
	},
}

var imageProgressCmd = &cobra.Command{
	Use:   "progress <project-id> <image-id>",
	Short: "Show the labeling progress of an image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			syncer, err := a.synchronizer()
			if err != nil {
				return err
			}
			p, err := progress(cmd.Context(), "Fetching labeling progress", func() (*internal.LabelingProgress, error) {
				return syncer.LabelingProgress(cmd.Context(), args[0], args[1])
			})
			if err != nil {
				return requestFailure("cannot fetch labeling progress", err)
			}
			return render(cmd.OutOrStdout(), p)
		})
	},
}

var imageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached current image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			image, err := a.sessions.CurrentImage()
			if err != nil {
				return noSessionHint(err)
			}
			if image == nil {
				return internal.ErrNoCurrentImage
			}
			return render(cmd.OutOrStdout(), image)
		})
	},
}

var imageClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current image locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.sessions.SetCurrentImage(nil); err != nil {
				return noSessionHint(err)
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Current image cleared")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.AddCommand(imageTouchCmd, imageProgressCmd, imageShowCmd, imageClearCmd)
}
