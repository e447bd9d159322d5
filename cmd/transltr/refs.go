package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/transltr/pkg/pipeline"
)

type referenceMatch struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Identifier string `json:"identifier"`
}

func newRefsCmd() *cobra.Command {
	var common commonFlags
	var encoding string
	var regexMode bool
	var jsonOutput bool
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "refs <identifier|regex> <glob>",
		Short: "List every place a recorded identifier occurs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			if strings.TrimSpace(pattern) == "" {
				return errors.New("identifier matcher cannot be empty")
			}
			matchIdentifier := func(ident string) bool { return ident == pattern }
			if regexMode {
				compiled, compileErr := regexp.Compile(pattern)
				if compileErr != nil {
					return fmt.Errorf("compile regex: %w", compileErr)
				}
				matchIdentifier = compiled.MatchString
			}

			env, err := loadEnv(cmd, common)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()
			if encoding == "" {
				encoding = env.cfg.ReadEncoding
			}

			paths, err := env.expand(args[1])
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

			// Sites are already in file order, then line and column order.
			matches := make([]referenceMatch, 0)
			for _, ident := range read.Table.Identifiers() {
				if !matchIdentifier(ident) {
					continue
				}
				for _, site := range read.Table.Sites(ident) {
					matches = append(matches, referenceMatch{
						File:       site.File,
						Line:       site.Line,
						Column:     site.Column,
						Identifier: ident,
					})
				}
			}

			switch {
			case jsonOutput && countOnly:
				err = emitJSON(struct {
					Count int `json:"count"`
				}{Count: len(matches)})
			case jsonOutput:
				err = emitJSON(matches)
			case countOnly:
				fmt.Println(len(matches))
			default:
				for _, match := range matches {
					fmt.Printf("%s:%d:%d %q\n", match.File, match.Line, match.Column, match.Identifier)
				}
			}
			if err != nil {
				return err
			}
			return failureError(read.Errors, read.Err())
		},
	}

	addCommonFlags(cmd, &common)
	cmd.Flags().StringVar(&encoding, "encoding", "", "source encoding (default read_encoding, latin-1)")
	cmd.Flags().BoolVar(&regexMode, "regex", false, "treat the first argument as a regular expression")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&countOnly, "count", false, "print the number of matches")
	return cmd
}

func runRefs(args []string) error {
	cmd := newRefsCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.Execute()
}
