package main

import (
	"github.com/spf13/cobra"

	"github.com/iopwsy/iop-eln/internal/app"
	"github.com/iopwsy/iop-eln/internal/output"
)

// globals carries the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	prefsPath  string
	verbose    bool
	format     string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "eln",
		Short: "Client for the IOP electronic lab notebook",
		Long: `eln lists notebooks, imports records from templates, exports records
and adds modules to existing records on the IOP ELN platform.

Credentials come from the config file (~/.config/iop-eln/config.toml) or
the ELN_USERNAME and ELN_PASSWORD environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default ~/.config/iop-eln/config.toml)")
	flags.StringVar(&g.prefsPath, "prefs", "", "preferences file (default ~/.config/iop-eln/prefs.toml)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&g.format, "format", "o", "", "output format: table, json or yaml (default from prefs)")

	root.AddCommand(
		newListCmd(g),
		newImportCmd(g),
		newExportCmd(g),
		newUpdateCmd(g),
		newBrowseCmd(g),
		newVersionCmd(),
	)
	return root
}

// runtime loads config and builds a session, logging to the command's stderr.
func (g *globals) runtime(cmd *cobra.Command) (*app.Runtime, error) {
	return app.Load(app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		Verbose:    g.verbose,
		Stderr:     cmd.ErrOrStderr(),
	})
}

// outputFormat resolves --format, falling back to the stored preference.
func (g *globals) outputFormat(rt *app.Runtime) (output.Format, error) {
	if g.format != "" {
		return output.ParseFormat(g.format)
	}
	return output.ParseFormat(rt.Prefs.Format)
}
