package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iopwsy/iop-eln/internal/output"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

type updateFlags struct {
	modules []string
	kinds   []string
	types   []string
	dryRun  bool
}

func newUpdateCmd(g *globals) *cobra.Command {
	f := &updateFlags{}
	cmd := &cobra.Command{
		Use:   "update <notebook> <uid> <module> <kind> <file>",
		Short: "Add modules to an existing record",
		Long: `Add a module named <module> of kind <kind> (form, table, richtext or
images) to record <uid>, filled with one entry per column of the row in file.

When file holds an array of rows, each row becomes its own module: the first
uses <module>/<kind>, the following ones take --module/--kind in order.
Columns are text entries unless --type col=kind says otherwise.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, single, err := readRows(cmd.InOrStdin(), args[4])
			if err != nil {
				return err
			}
			types, err := parseTypes(f.types)
			if err != nil {
				return err
			}
			template := eln.ColumnsTemplate(types)

			record := eln.UpdateRequest{
				Notebook:   args[0],
				UID:        args[1],
				ModuleName: args[2],
				ModuleKind: args[3],
			}
			dataset := eln.DatasetUpdate{
				Notebook:    args[0],
				UID:         args[1],
				ModuleNames: append([]string{args[2]}, f.modules...),
				ModuleKinds: append([]string{args[3]}, f.kinds...),
				Rows:        rows,
			}

			var body eln.UpdateBody
			if single {
				record.Row = rows[0]
				body, err = eln.UpdateRecordBody(record, template)
			} else {
				body, err = eln.UpdateDatasetBody(dataset, template)
			}
			if err != nil {
				return err
			}

			rt, err := g.runtime(cmd)
			if err != nil {
				return err
			}
			if f.dryRun {
				format, err := g.outputFormat(rt)
				if err != nil {
					return err
				}
				return output.Value(cmd.OutOrStdout(), format, body)
			}

			if single {
				err = rt.Session.UpdateRecord(cmd.Context(), record, template)
			} else {
				err = rt.Session.UpdateDataset(cmd.Context(), dataset, template)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d module(s) to %s/%s\n", len(body.AddModule), args[0], args[1])
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&f.modules, "module", nil, "module name for the next row (repeatable)")
	flags.StringArrayVar(&f.kinds, "kind", nil, "module kind for the next row (repeatable)")
	flags.StringArrayVar(&f.types, "type", nil, "entry kind of a column, as col=kind (repeatable)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "print the request body instead of sending it")
	return cmd
}
