package main

import "github.com/spf13/cobra"

func newBrowseCmd(g *globals) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse notebooks and records in a terminal UI",
		Long: `Open an interactive browser: pick a notebook to export its records.
The export filters below apply to every notebook opened. The last opened
notebook and the theme are remembered in the preferences file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.runtime(cmd)
			if err != nil {
				return err
			}
			return rt.Browse(cmd.Context(), q.query(nil))
		},
	}
	q.register(cmd)
	return cmd
}
