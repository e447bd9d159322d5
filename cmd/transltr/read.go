package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/transltr/internal/watch"
	"github.com/odvcencio/transltr/pkg/bucket"
	"github.com/odvcencio/transltr/pkg/pipeline"
	"github.com/odvcencio/transltr/pkg/syntax"
)

func newReadCmd() *cobra.Command {
	var common commonFlags
	var encoding string
	var jsonOutput bool
	var watchMode bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "read <glob> [syntax-file]",
		Short: "Collect identifiers from source files and seed the syntax mapping file",
		Long: "Scans every file matched by <glob>, buckets identifiers by the file they are unique to\n" +
			"(or the shared group \"_\"), and writes a syntax file mapping every identifier to itself.\n" +
			"Translations already present in the syntax file are kept.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, common)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			syntaxPath := syntaxPathArg(args, 1, env.cfg.SyntaxFile)
			env.cfg.SyntaxFile = syntaxPath
			out := env.cfg.OutPath()
			if encoding == "" {
				encoding = env.cfg.ReadEncoding
			}

			runOnce := func(ctx context.Context) error {
				paths, err := env.expand(args[0])
				if err != nil {
					return err
				}
				report, err := pipeline.Read(ctx, paths, pipeline.ReadOptions{
					Options:  env.pipelineOptions(encoding),
					Existing: syntax.LoadOrEmpty(syntaxPath, env.logger),
					From:     env.cfg.From,
					To:       env.cfg.To,
					Out:      out,
				})
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := emitJSON(report); err != nil {
						return err
					}
				} else {
					printReadReport(report)
				}
				return failureError(report.Errors, report.Err())
			}

			ctx := cmd.Context()
			runErr := runOnce(ctx)
			if !watchMode {
				return runErr
			}
			if runErr != nil {
				env.logger.Warn("read run failed", zap.Error(runErr))
			}
			return watch.Run(ctx, watch.Root(args[0]), watch.Options{
				Debounce:       debounce,
				Ignore:         env.ignore,
				IgnorePaths:    []string{out},
				IgnoreSuffixes: []string{pipeline.DefaultOutputSuffix},
				Logger:         env.logger,
			}, func(changed []string) {
				env.logger.Info("rerunning read", zap.Int("changed", len(changed)))
				if err := runOnce(ctx); err != nil {
					env.logger.Warn("read run failed", zap.Error(err))
				}
			})
		},
	}

	addCommonFlags(cmd, &common)
	cmd.Flags().String("out", "", "write the seeded table here instead of the syntax file")
	cmd.Flags().StringVar(&encoding, "encoding", "", "source encoding (default read_encoding, latin-1)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "rerun when matching files change")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a watch rerun")
	return cmd
}

func printReadReport(report *pipeline.ReadReport) {
	fmt.Printf(
		"read: files=%d identifiers=%d occurrences=%d groups=%d errors=%d\n",
		len(report.Files),
		report.Table.Len(),
		report.Table.Total(),
		len(report.Buckets),
		report.Failed(),
	)
	for _, summary := range bucket.Summarize(report.Buckets) {
		fmt.Printf("  %s identifiers=%d\n", summary.Group, summary.Identifiers)
	}
	for _, warning := range report.Warnings {
		fmt.Printf("  warning %s: %s\n", warning.Path, warning.Message)
	}
	if report.Saved != "" {
		fmt.Printf("saved: %s entries=%d\n", report.Saved, report.Syntax.EntryCount())
	}
}

func runRead(args []string) error {
	cmd := newReadCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.Execute()
}
