package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"marquee/internal/audit"
	"marquee/internal/services"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit report of the last published run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report, err := audit.Load(cfg.AuditReportPath())
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return services.Wrap(services.ErrNotFound, "audit", "load", "no audit report yet; run `marquee run` first", err)
				}
				return fmt.Errorf("load audit report: %w", err)
			}
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				renderReport(out, report, shouldColorize(out))
			}
			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full report as JSON")
	return cmd
}
