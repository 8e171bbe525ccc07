// Package cli implements the quicklinks command line. With no subcommand it
// starts the TUI; the subcommands expose sync, inspection, import/export and
// the fetch broker for scripting.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/app"
	"github.com/five82/quicklinks/internal/opener"
)

// Deps carries build information and optional collaborator overrides.
type Deps struct {
	Version string
	Commit  string

	// Opener and Clipboard default to the system browser and clipboard.
	Opener    opener.Opener
	Clipboard opener.Clipboard
	// LogOutput replaces the configured log file when set.
	LogOutput io.Writer
}

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
}

type env struct {
	deps  Deps
	flags *globalFlags
}

func (e env) options() app.Options {
	return app.Options{
		ConfigPath: e.flags.configPath,
		PrefsPath:  e.flags.prefsPath,
		Version:    e.deps.Version,
		Opener:     e.deps.Opener,
		Clipboard:  e.deps.Clipboard,
		LogOutput:  e.deps.LogOutput,
	}
}

// withRuntime opens the runtime for one command and closes it afterwards.
func (e env) withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := app.Open(ctx, e.options())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	return fn(ctx, rt)
}

// NewRootCmd builds the quicklinks command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	e := env{deps: deps, flags: &globalFlags{}}

	rootCmd := &cobra.Command{
		Use:   "quicklinks",
		Short: "Browse, sync and open curated link collections",
		Long: `quicklinks keeps two link collections, standard folders and customers,
synced from a remote endpoint into a local cache. A local override imported
by the user wins over the cache, and a bundled dataset is used when neither
exists.

Run without a subcommand to open the interactive popup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.Run(ctx, e.options())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&e.flags.configPath, "config", "c", "", "config file path (default: ~/.config/quicklinks/config.toml)")
	rootCmd.PersistentFlags().StringVar(&e.flags.prefsPath, "prefs", "", "preferences file path (default: ~/.config/quicklinks/prefs.toml)")

	rootCmd.AddCommand(
		newSyncCmd(e),
		newStatusCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newResetCmd(e),
		newRecentCmd(e),
		newOpenCmd(e),
		newBrokerCmd(e),
		newLogsCmd(e),
		newKeyCmd(e),
		newVersionCmd(e),
	)
	return rootCmd
}
