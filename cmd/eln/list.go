package main

import (
	"github.com/spf13/cobra"

	"github.com/iopwsy/iop-eln/internal/output"
)

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the notebooks visible to this account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.runtime(cmd)
			if err != nil {
				return err
			}
			format, err := g.outputFormat(rt)
			if err != nil {
				return err
			}
			names, err := rt.Session.ListNotebooks(cmd.Context())
			if err != nil {
				return err
			}
			return output.Notebooks(cmd.OutOrStdout(), format, names)
		},
	}
}
