package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"livestage/internal/logging"
	"livestage/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		rootFlag         string
		outputDirFlag    string
		outPairsFlag     string
		outLeftoversFlag string
		copyFlag         bool
		applyFlag        bool
		maxSecondsFlag   float64
		dedupeFlag       bool
		includeOthers    bool
		showIssues       bool
		verboseFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan a tree, pair stills with videos, and stage the results",
		Long: `Run walks the source tree, pairs Live Photo stills with their videos
(same directory first, then unique cross-directory candidates), and stages
pairs and leftovers into the two output collections with TSV manifests.

Runs are dry by default: every decision is computed and reported but
nothing is written. Pass --apply to materialize the output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("root") {
				cfg.Paths.RootDir = rootFlag
			}
			if flags.Changed("output-dir") {
				cfg.Paths.OutputDir = outputDirFlag
				cfg.Paths.PairsDir = ""
				cfg.Paths.LeftoversDir = ""
			}
			if flags.Changed("out-pairs") {
				cfg.Paths.PairsDir = outPairsFlag
			}
			if flags.Changed("out-leftovers") {
				cfg.Paths.LeftoversDir = outLeftoversFlag
			}
			if flags.Changed("copy") {
				cfg.Staging.TransferMode = "link"
				if copyFlag {
					cfg.Staging.TransferMode = "copy"
				}
			}
			if flags.Changed("apply") {
				cfg.Staging.DryRun = !applyFlag
			}
			if flags.Changed("live-max-seconds") {
				cfg.Matching.MaxVideoSeconds = maxSecondsFlag
			}
			if flags.Changed("dedupe-leftovers") {
				cfg.Staging.DedupeLeftovers = dedupeFlag
			}
			if flags.Changed("include-others") {
				cfg.Staging.IncludeOthers = includeOthers
			}
			if verboseFlag {
				cfg.Logging.Level = "debug"
			}
			if err := cfg.Renormalize(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			outcome, err := runner.New(cfg, logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderSummary(out, &outcome.Summary, showIssues)

			if errCount := outcome.Summary.Errors(); errCount > 0 {
				return fmt.Errorf("run completed with %d entry errors (see manifests)", errCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Source tree to scan")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Output base; derives LivePhotos and OtherMedia subdirectories")
	cmd.Flags().StringVar(&outPairsFlag, "out-pairs", "", "Destination for paired output")
	cmd.Flags().StringVar(&outLeftoversFlag, "out-leftovers", "", "Destination for leftover output")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy files instead of symlinking")
	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Materialize the output (runs are dry by default)")
	cmd.Flags().Float64Var(&maxSecondsFlag, "live-max-seconds", 0, "Cross-directory pairing duration limit; 0 disables the check")
	cmd.Flags().BoolVar(&dedupeFlag, "dedupe-leftovers", false, "Skip entries whose content was already staged")
	cmd.Flags().BoolVar(&includeOthers, "include-others", false, "Stage unclassified files as leftovers too")
	cmd.Flags().BoolVar(&showIssues, "show-issues", false, "List every warning and error after the summary")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	return cmd
}
