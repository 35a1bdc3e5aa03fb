package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cancer-registry-edits/pkg/codes"
)

func codesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "codes <table>",
		Short:     "List the entries of a code dictionary",
		Long:      "List a code dictionary. Tables: " + strings.Join(codes.TableNames, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: codes.TableNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			dict, ok := registry.Table(args[0])
			if !ok {
				return fmt.Errorf("unknown table %q, expected one of %s", args[0], strings.Join(codes.TableNames, ", "))
			}

			if asJSON {
				return writeJSON("-", dict.Entries())
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tDESCRIPTION")
			for _, e := range dict.Entries() {
				fmt.Fprintf(w, "%s\t%s\n", e.Code, e.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
