// Package options loads engine configuration from files, the environment
// and defaults.
package options

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tomapper/convert"
	"tomapper/maperr"
	"tomapper/primitive"
)

// EnvPrefix prefixes environment overrides, e.g. TOMAPPER_LOG_LEVEL.
const EnvPrefix = "TOMAPPER"

// Config represents the engine configuration
type Config struct {
	AllowUnexported bool              `mapstructure:"allow_unexported"`
	Categories      []string          `mapstructure:"categories"`
	Collections     CollectionsConfig `mapstructure:"collections"`
	MappingFiles    []string          `mapstructure:"mapping_files"`
	LogLevel        string            `mapstructure:"log_level"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
}

// CollectionsConfig represents the list and set converter policies
type CollectionsConfig struct {
	KeepNil   bool `mapstructure:"keep_nil"`
	AlwaysNew bool `mapstructure:"always_new"`
	Sort      bool `mapstructure:"sort"`
}

// MetricsConfig represents the metrics interceptor configuration
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Categories: []string{"safe_number", "text_number", "datetime", "duration", "enum_string"},
		Collections: CollectionsConfig{
			KeepNil: true,
		},
		LogLevel: "info",
		Metrics:  MetricsConfig{Namespace: "tomapper"},
	}
}

// New returns a viper instance preloaded with the defaults and environment
// bindings.
func New() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("allow_unexported", d.AllowUnexported)
	v.SetDefault("categories", d.Categories)
	v.SetDefault("collections.keep_nil", d.Collections.KeepNil)
	v.SetDefault("collections.always_new", d.Collections.AlwaysNew)
	v.SetDefault("collections.sort", d.Collections.Sort)
	v.SetDefault("mapping_files", d.MappingFiles)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration file at path, when given, on top of the
// defaults and the environment.
func Load(path string) (Config, error) {
	v := New()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
				Detail("read config file " + path).
				Cause(err).
				Build()
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
			Detail("decode configuration").
			Cause(err).
			Build()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks category names and the log level.
func (c Config) Validate() error {
	var errs []error

	if _, err := primitive.ParseCategories(c.Categories); err != nil {
		errs = append(errs, err)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil && c.LogLevel != "" {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
			Detail("invalid configuration").
			Cause(err).
			Build()
	}

	return nil
}

// CategorySet returns the enabled primitive conversion categories.
func (c Config) CategorySet() primitive.CategoryEnum {
	set, err := primitive.ParseCategories(c.Categories)
	if err != nil {
		return primitive.CategoryNone
	}

	return set
}

// CollectionOptions returns the collection converter policies.
func (c Config) CollectionOptions() convert.CollectionOptions {
	return convert.CollectionOptions{
		KeepNil:   c.Collections.KeepNil,
		AlwaysNew: c.Collections.AlwaysNew,
		Sort:      c.Collections.Sort,
	}
}

// Logger builds a production zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level := zapcore.InfoLevel

	if c.LogLevel != "" {
		l, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}

		level = l
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
