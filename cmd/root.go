package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/iris-session/internal"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	configPath   string
	apiRoot      string
	storagePath  string
	backend      string
	outputFormat string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iris-session",
	Short: "Keep a local IRIS session in sync with the IRIS server",
	Long: `A CLI client for IRIS, the image labeling front end of Cytomine.

iris-session caches your IRIS session locally (current project, current
image, current annotation) and keeps it synchronized with the server
through the IRIS REST API. It also exposes the project settings and
administration endpoints.

Quick Start:
  iris-session config set-api https://iris.example.org/iris
  iris-session keys set <public-key> <private-key>
  iris-session session fetch
  iris-session project touch 42
  iris-session image touch 42 1001`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: <user config dir>/iris-session/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiRoot, "api", "", "IRIS server URL, overrides apiRoot of the config")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Local storage location (database or YAML file)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Local storage backend: sqlite, file or memory")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json, jsonl, yaml, md")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
