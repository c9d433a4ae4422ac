package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iopwsy/iop-eln/internal/output"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

type importFlags struct {
	titles   []string
	uids     []string
	keywords []string
	quote    string
	newUIDs  bool
	dryRun   bool
}

func newImportCmd(g *globals) *cobra.Command {
	f := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import <notebook> <template> <file>",
		Short: "Create records from a template",
		Long: `Create one record per element of file, a JSON or YAML array of record
payloads ("-" reads stdin). Titles, uids and keywords are matched to records
by position; missing titles and uids default to the current time.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd.InOrStdin(), args[2])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("%w: %s holds no records", eln.ErrEmptyInput, args[2])
			}
			quote, err := parseQuote(f.quote)
			if err != nil {
				return err
			}
			req := eln.ImportRequest{
				Notebook: args[0],
				Template: args[1],
				Records:  records,
				Titles:   f.titles,
				UIDs:     f.uids,
				Keywords: f.keywords,
				Quote:    quote,
			}
			if f.newUIDs {
				req.UIDs = fillUIDs(f.uids, len(records), uuid.NewString)
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
				return output.Value(cmd.OutOrStdout(), format, rt.Session.ImportBody(req))
			}
			if err := rt.Session.Import(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d record(s) into %s\n", len(records), req.Notebook)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&f.titles, "title", nil, "record title, repeat once per record")
	flags.StringArrayVar(&f.uids, "uid", nil, "record uid, repeat once per record")
	flags.StringArrayVar(&f.keywords, "keyword", nil, "record keyword, repeat once per record")
	flags.BoolVar(&f.newUIDs, "uuid", false, "generate a random uid for records without --uid")
	flags.StringVar(&f.quote, "quote", "", "quote payload as JSON")
	flags.BoolVar(&f.dryRun, "dry-run", false, "print the request body instead of sending it")
	return cmd
}

// fillUIDs returns n uids, keeping the given ones and generating the rest.
func fillUIDs(given []string, n int, generate func() string) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(given) && given[i] != "" {
			out[i] = given[i]
			continue
		}
		out[i] = generate()
	}
	return out
}
