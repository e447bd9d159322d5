package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/transltr/internal/stats"
	"github.com/odvcencio/transltr/pkg/pipeline"
)

func newStatsCmd() *cobra.Command {
	var common commonFlags
	var encoding string
	var top int
	var topFiles int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <glob>",
		Short: "Report identifier frequencies without writing a syntax file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if top <= 0 || topFiles <= 0 {
				return usageError("top and top-files must be > 0")
			}

			env, err := loadEnv(cmd, common)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()
			if encoding == "" {
				encoding = env.cfg.ReadEncoding
			}

			paths, err := env.expand(args[0])
			if err != nil {
				return err
			}
			read, err := pipeline.Read(cmd.Context(), paths, pipeline.ReadOptions{
				Options: env.pipelineOptions(encoding),
				From:    env.cfg.From,
				To:      env.cfg.To,
			})
			if err != nil {
				return err
			}

			report, err := stats.Build(read, stats.Options{TopIdentifiers: top, TopFiles: topFiles})
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := emitJSON(report); err != nil {
					return err
				}
				return failureError(read.Errors, read.Err())
			}

			fmt.Printf(
				"stats: files=%d identifiers=%d occurrences=%d shared=%d (%.1f%%) errors=%d\n",
				report.FileCount,
				report.IdentifierCount,
				report.OccurrenceCount,
				report.SharedCount,
				report.SharedRatio*100,
				report.FailedCount,
			)
			if len(report.TopIdentifiers) > 0 {
				fmt.Printf("top identifiers (limit=%d):\n", top)
				for _, ident := range report.TopIdentifiers {
					fmt.Printf("  %q count=%d files=%d\n", ident.Identifier, ident.Count, ident.Files)
				}
			}
			if len(report.TopFiles) > 0 {
				fmt.Printf("top files (limit=%d):\n", topFiles)
				for _, file := range report.TopFiles {
					fmt.Printf(
						"  %s occurrences=%d identifiers=%d unique=%d\n",
						file.Path,
						file.Occurrences,
						file.Identifiers,
						file.Unique,
					)
				}
			}
			return failureError(read.Errors, read.Err())
		},
	}

	addCommonFlags(cmd, &common)
	cmd.Flags().StringVar(&encoding, "encoding", "", "source encoding (default read_encoding, latin-1)")
	cmd.Flags().IntVar(&top, "top", 20, "number of most frequent identifiers")
	cmd.Flags().IntVar(&topFiles, "top-files", 10, "number of files by occurrence count")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}

func runStats(args []string) error {
	cmd := newStatsCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.Execute()
}
