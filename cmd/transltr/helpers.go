package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/transltr/internal/config"
	"github.com/odvcencio/transltr/internal/logging"
	"github.com/odvcencio/transltr/pkg/files"
	"github.com/odvcencio/transltr/pkg/ignore"
	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/pipeline"
)

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

const usageExitCode = 2

func usageError(format string, args ...any) error {
	return exitCodeError{code: usageExitCode, err: fmt.Errorf(format, args...)}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configPath string
	verbose    bool
	logJSON    bool
}

// addCommonFlags registers the logging flags and every configuration key as a flag. Flag
// names use dashes; config.Load maps them onto the underscore keys.
func addCommonFlags(cmd *cobra.Command, common *commonFlags) {
	flags := cmd.Flags()
	flags.StringVar(&common.configPath, "config", "", "config file (default ./.transltr.yaml)")
	flags.BoolVarP(&common.verbose, "verbose", "v", false, "log per-file progress")
	flags.BoolVar(&common.logJSON, "log-json", false, "log as JSON")

	flags.String("syntax-file", config.DefaultSyntaxFile, "syntax mapping file")
	flags.String("from", config.DefaultFrom, "tag holding the source text of each entry")
	flags.String("to", config.DefaultTo, "tag holding the replacement text of each entry")
	flags.Bool("ext-symbols", false, "treat symbol-chars as identifier characters")
	flags.String("symbol-chars", "=>", "characters accepted in identifiers with --ext-symbols")
	flags.Bool("nest-comments", false, "allow nested (* *) comments")
	flags.Int("workers", 0, "files processed in parallel (default GOMAXPROCS)")
	flags.String("ignore-file", ignore.DefaultFile, "gitignore-style file listing paths to skip")
	flags.String("system-prefix", "$ ", "text written before each system expression")
}

type runtimeEnv struct {
	cfg    config.Config
	logger *zap.Logger
	ignore *ignore.Matcher
}

func loadEnv(cmd *cobra.Command, common commonFlags) (*runtimeEnv, error) {
	cfg, err := config.Load(config.New(), common.configPath, "", cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := logging.New(common.verbose, common.logJSON)
	matcher, err := ignore.LoadIfExists(cfg.IgnoreFile)
	if err != nil {
		return nil, fmt.Errorf("load ignore file: %w", err)
	}
	if matcher != nil {
		logger.Debug("ignore file loaded", zap.String("path", cfg.IgnoreFile), zap.Int("patterns", matcher.Len()))
	}
	return &runtimeEnv{cfg: cfg, logger: logger, ignore: matcher}, nil
}

// expand resolves pattern to the files a run should process. Files ending in the default
// output suffix or in any of outputSuffixes are never picked up as inputs.
func (env *runtimeEnv) expand(pattern string, outputSuffixes ...string) ([]string, error) {
	entries, err := files.Expand(pattern, files.Options{
		Ignore:       env.ignore,
		SkipSuffixes: append([]string{pipeline.DefaultOutputSuffix}, outputSuffixes...),
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		env.logger.Warn("no files matched", zap.String("pattern", pattern))
	}
	return files.Paths(entries), nil
}

func (env *runtimeEnv) pipelineOptions(encoding string) pipeline.Options {
	return pipeline.Options{
		Scan:     env.cfg.ScanOptions(),
		Encoding: encoding,
		Workers:  env.cfg.Workers,
		Logger:   env.logger,
	}
}

func emitJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// failureError prints every per-file failure and returns an exit-code error when any file
// failed.
func failureError(fileErrors []model.FileError, combined error) error {
	if combined == nil {
		return nil
	}
	for _, failure := range fileErrors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", failure.Path, failure.Error)
	}
	return exitCodeError{code: 1, err: fmt.Errorf("%d file(s) failed", len(fileErrors))}
}

func syntaxPathArg(args []string, index int, fallback string) string {
	if len(args) > index && strings.TrimSpace(args[index]) != "" {
		return args[index]
	}
	return fallback
}

func isUsageError(err error) bool {
	var withCode exitCodeError
	return errors.As(err, &withCode) && withCode.ExitCode() == usageExitCode
}
