// Package config resolves settings from defaults, an optional .transltr.yaml, TRANSLTR_*
// environment variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/odvcencio/transltr/pkg/ignore"
	"github.com/odvcencio/transltr/pkg/pipeline"
	"github.com/odvcencio/transltr/pkg/scan"
	"github.com/odvcencio/transltr/pkg/source"
	"github.com/odvcencio/transltr/pkg/substitute"
)

const (
	FileName  = ".transltr"
	EnvPrefix = "TRANSLTR"

	DefaultSyntaxFile = "seed7_syntax.yaml"
	DefaultFrom       = "en"
	DefaultTo         = "ru"
)

// Keys.
const (
	KeySyntaxFile    = "syntax_file"
	KeyOut           = "out"
	KeyReadEncoding  = "read_encoding"
	KeyApplyEncoding = "apply_encoding"
	KeyFrom          = "from"
	KeyTo            = "to"
	KeyExtSymbols    = "ext_symbols"
	KeySymbolChars   = "symbol_chars"
	KeyNestComments  = "nest_comments"
	KeyWorkers       = "workers"
	KeyIgnoreFile    = "ignore_file"
	KeySystemPrefix  = "system_prefix"
)

type Config struct {
	SyntaxFile    string `mapstructure:"syntax_file"`
	Out           string `mapstructure:"out"`
	ReadEncoding  string `mapstructure:"read_encoding"`
	ApplyEncoding string `mapstructure:"apply_encoding"`
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
	ExtSymbols    bool   `mapstructure:"ext_symbols"`
	SymbolChars   string `mapstructure:"symbol_chars"`
	NestComments  bool   `mapstructure:"nest_comments"`
	Workers       int    `mapstructure:"workers"`
	IgnoreFile    string `mapstructure:"ignore_file"`
	SystemPrefix  string `mapstructure:"system_prefix"`
}

// New returns a viper instance carrying the defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySyntaxFile, DefaultSyntaxFile)
	v.SetDefault(KeyOut, "")
	v.SetDefault(KeyReadEncoding, pipeline.DefaultReadEncoding)
	v.SetDefault(KeyApplyEncoding, pipeline.DefaultApplyEncoding)
	v.SetDefault(KeyFrom, DefaultFrom)
	v.SetDefault(KeyTo, DefaultTo)
	v.SetDefault(KeyExtSymbols, false)
	v.SetDefault(KeySymbolChars, string(scan.DefaultSymbolChars()))
	v.SetDefault(KeyNestComments, false)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyIgnoreFile, ignore.DefaultFile)
	v.SetDefault(KeySystemPrefix, substitute.DefaultSystemPrefix)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or .transltr.yaml from dir when path is empty, binds flags on top and
// decodes the result. A missing default config file is not an error.
func Load(v *viper.Viper, path, dir string, flags *pflag.FlagSet) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// bindFlags binds every flag whose name, with dashes as underscores, is a known key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(flag *pflag.Flag) {
		key := strings.ReplaceAll(flag.Name, "-", "_")
		if !isKey(key) || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flag); err != nil {
			bindErr = fmt.Errorf("bind flag %q: %w", flag.Name, err)
		}
	})
	return bindErr
}

func isKey(key string) bool {
	switch key {
	case KeySyntaxFile, KeyOut, KeyReadEncoding, KeyApplyEncoding, KeyFrom, KeyTo,
		KeyExtSymbols, KeySymbolChars, KeyNestComments, KeyWorkers, KeyIgnoreFile, KeySystemPrefix:
		return true
	}
	return false
}

// Validate checks tags, encodings and the worker count.
func (c Config) Validate() error {
	if strings.TrimSpace(c.From) == "" || strings.TrimSpace(c.To) == "" {
		return fmt.Errorf("from and to tags are required")
	}
	if c.From == c.To {
		return fmt.Errorf("from and to tags must differ, both are %q", c.From)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	for _, name := range []string{c.ReadEncoding, c.ApplyEncoding} {
		if _, err := source.Lookup(name); err != nil {
			return err
		}
	}
	if !utf8.ValidString(c.SymbolChars) {
		return fmt.Errorf("symbol_chars is not valid UTF-8")
	}
	return nil
}

// ScanOptions returns the scanner settings.
func (c Config) ScanOptions() scan.Options {
	return scan.Options{
		ExtendedSymbols: c.ExtSymbols,
		SymbolChars:     []rune(c.SymbolChars),
		NestComments:    c.NestComments,
	}
}

// SubstituteOptions returns the engine settings.
func (c Config) SubstituteOptions() substitute.Options {
	return substitute.Options{From: c.From, To: c.To, SystemPrefix: c.SystemPrefix}
}

// OutPath is where read mode saves the seeded table.
func (c Config) OutPath() string {
	if c.Out != "" {
		return c.Out
	}
	return c.SyntaxFile
}
