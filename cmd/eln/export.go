package main

import (
	"github.com/spf13/cobra"

	"github.com/iopwsy/iop-eln/internal/output"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

// queryFlags are the export filters shared by export and browse.
type queryFlags struct {
	from     string
	to       string
	keywords []string
	uids     []string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&q.from, "from", "", "earliest record date, e.g. 2023-01-01")
	flags.StringVar(&q.to, "to", "", "latest record date")
	flags.StringArrayVar(&q.keywords, "keyword", nil, "only records with this keyword (repeatable)")
	flags.StringArrayVar(&q.uids, "uid", nil, "only the record with this uid (repeatable)")
}

func (q *queryFlags) query(notebooks []string) eln.ExportQuery {
	return eln.ExportQuery{
		Notebooks: notebooks,
		DateStart: q.from,
		DateEnd:   q.to,
		Keywords:  q.keywords,
		UIDs:      q.uids,
	}
}

func newExportCmd(g *globals) *cobra.Command {
	q := &queryFlags{}
	var flat bool
	cmd := &cobra.Command{
		Use:   "export <notebook>...",
		Short: "Export records from one or more notebooks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.runtime(cmd)
			if err != nil {
				return err
			}
			format, err := g.outputFormat(rt)
			if err != nil {
				return err
			}
			query := q.query(args)
			if flat {
				records, err := eln.ExportRecords(cmd.Context(), rt.Session, query, eln.TableMap)
				if err != nil {
					return err
				}
				return output.Records(cmd.OutOrStdout(), format, records)
			}
			datasets, err := rt.Session.Export(cmd.Context(), query)
			if err != nil {
				return err
			}
			return output.Datasets(cmd.OutOrStdout(), format, datasets)
		},
	}
	q.register(cmd)
	cmd.Flags().BoolVar(&flat, "flat", false, "print records as title -> module field maps")
	return cmd
}
