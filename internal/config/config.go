// Package config loads mdfront settings with Viper.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/ezerfernandes/mdfront/internal/frontmatter"
)

// AppName is the application name used for the config file and the
// environment prefix.
const AppName = "mdfront"

// Config is the top-level configuration.
type Config struct {
	Marker     string   `mapstructure:"marker" yaml:"marker"`
	MinMarkers int      `mapstructure:"min_markers" yaml:"min_markers"`
	Include    []string `mapstructure:"include" yaml:"include"`
	Format     string   `mapstructure:"format" yaml:"format"`
}

// DefaultInclude lists the globs selecting documents for check.
func DefaultInclude() []string {
	return []string{"**/*.md", "**/*.qmd", "**/*.Rmd"}
}

// ErrInvalidConfig indicates configuration validation failed.
var ErrInvalidConfig = errors.New("invalid configuration")

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("." + AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	v.SetDefault("marker", string(rune(frontmatter.DefaultMarker)))
	v.SetDefault("min_markers", frontmatter.DefaultMinMarkers)
	v.SetDefault("include", DefaultInclude())
	v.SetDefault("format", "yaml")

	return v
}

// Load reads the configuration. An explicit path must exist; without one the
// working directory and the home directory are searched and a missing file
// leaves the defaults in place. The result is not validated: callers apply
// their overrides first and then call [Config.Validate].
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		switch {
		case errors.As(err, &notFound) && path == "":
		case path != "" && errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}

// Validate checks marker, min_markers and format.
func (c *Config) Validate() error {
	if len(c.Marker) != 1 {
		return errors.Wrapf(ErrInvalidConfig, "marker must be a single character, got %q", c.Marker)
	}

	if err := c.Options().Validate(); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}

	switch c.Format {
	case "yaml", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "format must be yaml or json, got %q", c.Format)
	}

	return nil
}

// Options returns the recognizer options described by the config.
func (c *Config) Options() frontmatter.Options {
	opts := frontmatter.Options{MinMarkers: c.MinMarkers} //nolint:exhaustruct
	if len(c.Marker) > 0 {
		opts.Marker = c.Marker[0]
	}

	return opts
}
