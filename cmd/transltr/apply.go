package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/transltr/internal/watch"
	"github.com/odvcencio/transltr/pkg/pipeline"
	"github.com/odvcencio/transltr/pkg/syntax"
)

func newApplyCmd() *cobra.Command {
	var common commonFlags
	var encoding string
	var suffix string
	var inPlace bool
	var jsonOutput bool
	var watchMode bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "apply <glob> [syntax-file]",
		Short: "Rewrite source files through the syntax mapping file",
		Long: "Rewrites every file matched by <glob>, replacing identifiers with their translation\n" +
			"from the file's own group or the shared group. Output goes to <file>.tmp unless\n" +
			"--in-place is set.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchMode && inPlace {
				return usageError("--watch cannot be combined with --in-place")
			}

			env, err := loadEnv(cmd, common)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			syntaxPath := syntaxPathArg(args, 1, env.cfg.SyntaxFile)
			if encoding == "" {
				encoding = env.cfg.ApplyEncoding
			}

			runOnce := func(ctx context.Context) error {
				paths, err := env.expand(args[0], suffix)
				if err != nil {
					return err
				}
				report := pipeline.Apply(ctx, paths, syntax.LoadOrEmpty(syntaxPath, env.logger), pipeline.ApplyOptions{
					Options:    env.pipelineOptions(encoding),
					Substitute: env.cfg.SubstituteOptions(),
					Suffix:     suffix,
					InPlace:    inPlace,
				})
				if jsonOutput {
					if err := emitJSON(report); err != nil {
						return err
					}
				} else {
					printApplyReport(report)
				}
				return failureError(report.Errors, report.Err())
			}

			ctx := cmd.Context()
			runErr := runOnce(ctx)
			if !watchMode {
				return runErr
			}
			if runErr != nil {
				env.logger.Warn("apply run failed", zap.Error(runErr))
			}
			return watch.Run(ctx, watch.Root(args[0]), watch.Options{
				Debounce:       debounce,
				Ignore:         env.ignore,
				IgnoreSuffixes: []string{pipeline.DefaultOutputSuffix, suffix},
				Logger:         env.logger,
			}, func(changed []string) {
				env.logger.Info("rerunning apply", zap.Int("changed", len(changed)))
				if err := runOnce(ctx); err != nil {
					env.logger.Warn("apply run failed", zap.Error(err))
				}
			})
		},
	}

	addCommonFlags(cmd, &common)
	cmd.Flags().StringVar(&encoding, "encoding", "", "source encoding (default apply_encoding, utf-8)")
	cmd.Flags().StringVar(&suffix, "suffix", pipeline.DefaultOutputSuffix, "suffix appended to each output file")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "replace each source file with its rewritten output")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "rerun when matching files change")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a watch rerun")
	return cmd
}

func printApplyReport(report *pipeline.ApplyReport) {
	totals := report.Totals()
	fmt.Printf(
		"apply: files=%d substituted=%d unchanged=%d system=%d errors=%d\n",
		len(report.Files),
		totals.Substituted,
		totals.Unchanged,
		totals.System,
		report.Failed(),
	)
	for _, file := range report.Files {
		fmt.Printf("  %s -> %s substituted=%d\n", file.Path, file.Output, file.Stats.Substituted)
	}
	for _, warning := range report.Warnings {
		fmt.Printf("  warning %s: %s\n", warning.Path, warning.Message)
	}
}

func runApply(args []string) error {
	cmd := newApplyCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.Execute()
}
