package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transltr",
		Short: "Translate identifiers in source files through a YAML syntax mapping",
		Long: "transltr reads identifiers out of source files into a syntax mapping file and applies\n" +
			"edited mappings back, leaving comments and string literals untouched.",
		Version: version,
		Example: "  transltr read 'prg/*.sd7' seed7_syntax.yaml\n" +
			"  transltr apply 'prg/*.sd7' seed7_syntax.yaml --to ru\n" +
			"  transltr stats 'lib/**/*.s7i' --top 15\n" +
			"  transltr refs writeln 'prg/*.sd7'",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			if len(args) == 0 {
				return usageError("missing mode: expected one of read, apply, stats, refs")
			}
			return usageError("unknown mode %q: expected one of read, apply, stats, refs", args[0])
		},
	}

	root.AddCommand(
		newReadCmd(),
		newApplyCmd(),
		newStatsCmd(),
		newRefsCmd(),
	)
	return root
}
