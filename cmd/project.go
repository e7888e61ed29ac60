package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var (
	projectFile  string
	projectClass string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Work with the current project of the session",
}

var projectTouchCmd = &cobra.Command{
	Use:   "touch <project-id>",
	Short: "Open a project and make it the current project",
	Long: `Tell the server that the project is now the active one of the session and
cache the project it returns as the current project.

If the server rejects the request the cached current project is cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			syncer, err := a.synchronizer()
			if err != nil {
				return err
			}
			project, err := progress(cmd.Context(), "Touching project "+args[0], func() (*internal.Project, error) {
				return syncer.TouchProject(cmd.Context(), args[0])
			})
			if err != nil {
				return requestFailure("cannot touch project", err)
			}
			return render(cmd.OutOrStdout(), project)
		})
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Send the current project (or one read from --file) to the server",
	Long: `Send an IRIS project to the server and cache the server's version of it as
the current project.

Without --file the cached current project is sent. --file reads a JSON
project, "-" reads it from stdin. --class overrides the project class.

If the server rejects the request the cached current project is cleared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			var (
				project *internal.Project
				err     error
			)
			if projectFile != "" {
				project, err = readProject(cmd.InOrStdin(), projectFile)
			} else {
				project, err = a.sessions.CurrentProject()
				if err == nil && project == nil {
					err = internal.ErrNoCurrentProject
				}
			}
			if err != nil {
				return noSessionHint(err)
			}
			if projectClass != "" {
				project.Class = projectClass
			}

			syncer, err := a.synchronizer()
			if err != nil {
				return err
			}
			updated, err := progress(cmd.Context(), "Updating project "+project.CmID.String(), func() (*internal.Project, error) {
				return syncer.UpdateProject(cmd.Context(), project)
			})
			if err != nil {
				return requestFailure("cannot update project", err)
			}
			return render(cmd.OutOrStdout(), updated)
		})
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached current project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			project, err := a.sessions.CurrentProject()
			if err != nil {
				return noSessionHint(err)
			}
			if project == nil {
				return internal.ErrNoCurrentProject
			}
			return render(cmd.OutOrStdout(), project)
		})
	},
}

var projectClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current project locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			// setting a nil project never reaches the server
			if err := a.sessions.SetCurrentProject(nil); err != nil {
				return noSessionHint(err)
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Current project cleared")
			return nil
		})
	},
}

// readProject decodes a JSON project from path, or from stdin when path is "-"
func readProject(stdin io.Reader, path string) (*internal.Project, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var project internal.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, &internal.ParseError{Source: "file", Key: path, Err: err}
	}
	if project.CmID.IsZero() {
		return nil, errors.New("project has no cmID")
	}
	return &project, nil
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectTouchCmd, projectUpdateCmd, projectShowCmd, projectClearCmd)
	projectUpdateCmd.Flags().StringVar(&projectFile, "file", "", `JSON file with the project to send ("-" for stdin)`)
	projectUpdateCmd.Flags().StringVar(&projectClass, "class", "", "Project class to set before sending")
}
