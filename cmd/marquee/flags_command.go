package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/review"
	"marquee/internal/store"
)

func newFlagsCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "flags",
		Short: "List audit flags raised by the last published run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(commandContextOrBackground(cmd), func(st *store.Store) error {
				flags, err := st.ListFlags(commandContextOrBackground(cmd), review.FlagKind(strings.TrimSpace(kind)))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, flags)
				}
				out := cmd.OutOrStdout()
				if len(flags) == 0 {
					fmt.Fprintln(out, "No flags")
					return nil
				}
				rows := make([][]string, 0, len(flags))
				for _, f := range flags {
					subject := strings.Join(f.Reviews, ", ")
					if subject == "" {
						subject = strings.Join(f.Records, ", ")
					}
					rows = append(rows, []string{
						string(f.Severity),
						string(f.Kind),
						strings.Join(f.ShowIDs, ", "),
						subject,
						f.Explanation,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Severity", "Kind", "Shows", "Subject", "Explanation"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list flags of this kind (e.g. HighDisagreement)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}
