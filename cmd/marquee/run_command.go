package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/ingest"
	"marquee/internal/pipeline"
	"marquee/internal/services"
)

type runSummary struct {
	RunID       string `json:"run_id"`
	Verdict     string `json:"verdict"`
	DryRun      bool   `json:"dry_run"`
	InputDigest string `json:"input_digest,omitempty"`
	Records     int    `json:"records"`
	Malformed   int    `json:"malformed_records"`
	Reviews     int    `json:"canonical_reviews"`
	Flags       int    `json:"flags"`
	Store       string `json:"store,omitempty"`
	Report      string `json:"audit_report,omitempty"`
	Registry    string `json:"critic_registry,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var inputDir string
	var jsonOutput bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [file...]",
		Short: "Reconcile source records and publish the canonical store",
		Long: "Load source records from the input directory (or the files given), resolve\n" +
			"identities per show, score every canonical review, and evaluate the audit gate.\n" +
			"The command exits with status 3 when the gate fails; outputs are still written\n" +
			"so the failure can be inspected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx := commandContextOrBackground(cmd)

			loader := ingest.NewLoader(logger)
			var batch *ingest.Batch
			if len(args) > 0 {
				paths := make([]string, 0, len(args))
				for _, arg := range args {
					expanded, err := config.ExpandPath(arg)
					if err != nil {
						return fmt.Errorf("resolve input path: %w", err)
					}
					paths = append(paths, expanded)
				}
				batch, err = loader.LoadFiles(runCtx, paths)
			} else {
				dir := cfg.Paths.InputDir
				if strings.TrimSpace(inputDir) != "" {
					if dir, err = config.ExpandPath(inputDir); err != nil {
						return fmt.Errorf("resolve input directory: %w", err)
					}
				}
				batch, err = loader.LoadDir(runCtx, dir)
			}
			if err != nil {
				return services.Wrap(services.ErrValidation, "ingest", "load", "", err)
			}

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			res, err := p.Run(runCtx, batch)
			if err != nil {
				return err
			}

			summary := runSummary{
				RunID:       res.RunID,
				Verdict:     string(res.Report.Verdict),
				DryRun:      dryRun,
				InputDigest: res.InputDigest,
				Records:     res.Records,
				Malformed:   res.Malformed,
				Reviews:     len(res.Reviews),
				Flags:       len(res.Flags),
			}
			if !dryRun {
				if err := p.Persist(runCtx, res); err != nil {
					return err
				}
				summary.Store = cfg.StorePath()
				summary.Report = cfg.AuditReportPath()
				summary.Registry = cfg.RegistryPath()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				renderReport(out, res.Report, shouldColorize(out))
				if dryRun {
					fmt.Fprintln(out, "\nDry run: nothing was written")
				} else {
					fmt.Fprintf(out, "\nCanonical store written to %s\n", summary.Store)
				}
			}
			return res.Report.Err()
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory of source record files (defaults to paths.input_dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print a JSON run summary")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate without writing any output")
	return cmd
}
