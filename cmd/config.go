package cmd

import (
	"fmt"

	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit the iris-session configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration (file, environment and flags)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return render(cmd.OutOrStdout(), struct {
				File    string `json:"file"`
				APIRoot string `json:"apiRoot"`
				Timeout string `json:"timeout"`
				Backend string `json:"backend"`
				Path    string `json:"path,omitempty"`
				HasCA   bool   `json:"customCA"`
			}{
				File:    a.cfgPath,
				APIRoot: a.cfg.APIRoot,
				Timeout: a.cfg.Timeout.String(),
				Backend: a.cfg.Storage.Backend,
				Path:    a.cfg.Storage.Path,
				HasCA:   a.cfg.Cert.CA != "",
			})
		})
	},
}

var configSetAPICmd = &cobra.Command{
	Use:   "set-api <url>",
	Short: "Store the IRIS server URL in the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			paths, err := internal.DetectPaths()
			if err != nil {
				return err
			}
			path = paths.ConfigFile
		}

		// edit the file as written so env and flag overrides are not persisted
		cfg, _, err := internal.ReadConfigFile(path)
		if err != nil {
			return err
		}
		cfg.APIRoot = args[0]
		if err := cfg.Verify(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("API root saved to %s", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetAPICmd)
}
