// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/servicecmd/servicecmd/internal/operation"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

const operationsGroup = "operations"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "servicecmd",
		Short: "Run docker compose operations across many services",
		Long: TitleStyle.Render("servicecmd") + SubtitleStyle.Render(" - run compose operations across many services") + `

servicecmd resolves named services to compose files, groups them by folder
and runs one compose command per folder in parallel.

Services are defined in a services file (CUE, YAML or TOML) next to the
configuration, or wherever services_file points to.

` + SubtitleStyle.Render("Examples:") + `
  servicecmd up                 Start every service
  servicecmd up web api --build Build and start two services
  servicecmd down -i legacy     Stop everything except files matching 'legacy'
  servicecmd logs web --tail 20 Follow the logs of a single service
  servicecmd services --files   Show the compose files of every service`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is <config dir>/servicecmd/config.cue)")

	rootCmd.AddGroup(&cobra.Group{ID: operationsGroup, Title: "Compose Operations:"})
	rootCmd.AddCommand(newOperationCommands(app, operation.Default())...)
	rootCmd.AddCommand(newServicesCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI and exits with the code carried by the returned error.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
