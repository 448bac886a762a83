// Package config loads locohub settings.
//
// Values come from three layers, highest precedence first:
//  1. Environment variables prefixed with LOCOHUB_ (LOCOHUB_VALIDATION_MAX_FAILURES
//     sets validation.max_failures)
//  2. An optional YAML file
//  3. Built-in defaults, applied to every field left at its zero value
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "LOCOHUB_"

const maxConfigFileSize = 1024 * 1024

// Config is the full configuration.
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Normalize  NormalizeConfig  `koanf:"normalize"`
	Validation ValidationConfig `koanf:"validation"`
}

// LogConfig controls the logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn or error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// NormalizeConfig controls segmentation and resampling.
type NormalizeConfig struct {
	StanceThreshold       float64 `koanf:"stance_threshold"`
	Concurrency           int     `koanf:"concurrency"`
	KneeExtensionPositive bool    `koanf:"knee_extension_positive"`
}

// ValidationConfig controls both validation tiers.
type ValidationConfig struct {
	ViolationThreshold float64 `koanf:"violation_threshold"`
	MaxFailures        int     `koanf:"max_failures"`
	Concurrency        int     `koanf:"concurrency"`
	// StrictTasks fails the run on a dataset task that has no rules.
	StrictTasks bool `koanf:"strict_tasks"`
	// Checkpoints are the default tier-2 checkpoints, in phase percent.
	Checkpoints []float64 `koanf:"checkpoints"`
	// TaskCheckpoints override Checkpoints for single tasks.
	TaskCheckpoints map[string][]float64 `koanf:"task_checkpoints"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)

	return &cfg
}

// Load reads path, if not empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	var content []byte
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to stat config file %s", path)
		}
		if info.Size() > maxConfigFileSize {
			return nil, errs.Configuration("config file %s is larger than %d bytes", path, maxConfigFileSize)
		}
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", path)
		}
	}

	return LoadBytes(content)
}

// LoadBytes parses YAML content, which may be empty, then applies environment
// overrides and defaults.
func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, errs.Configuration("unable to parse config: %v", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "unable to load environment variables")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Configuration("unable to decode config: %v", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps LOCOHUB_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}

	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Normalize.StanceThreshold == 0 {
		cfg.Normalize.StanceThreshold = gait.DefaultStanceThreshold
	}
	if cfg.Normalize.Concurrency == 0 {
		cfg.Normalize.Concurrency = runtime.NumCPU()
	}
	if cfg.Validation.ViolationThreshold == 0 {
		cfg.Validation.ViolationThreshold = validation.DefaultViolationThreshold
	}
	if cfg.Validation.MaxFailures == 0 {
		cfg.Validation.MaxFailures = validation.DefaultMaxFailures
	}
	if cfg.Validation.Concurrency == 0 {
		cfg.Validation.Concurrency = runtime.NumCPU()
	}
	if len(cfg.Validation.Checkpoints) == 0 {
		cfg.Validation.Checkpoints = validation.DefaultCheckpoints()
	}
}

// Validate reports the first invalid setting as a configuration error.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.Configuration("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errs.Configuration("log.format %q must be json or console", c.Log.Format)
	}

	if c.Normalize.StanceThreshold < 0 {
		return errs.Configuration("normalize.stance_threshold must not be negative, got %g", c.Normalize.StanceThreshold)
	}
	if c.Normalize.Concurrency < 0 {
		return errs.Configuration("normalize.concurrency must not be negative, got %d", c.Normalize.Concurrency)
	}

	if c.Validation.ViolationThreshold < 0 || c.Validation.ViolationThreshold > 1 {
		return errs.Configuration("validation.violation_threshold must be within [0, 1], got %g",
			c.Validation.ViolationThreshold)
	}
	if c.Validation.MaxFailures < 0 {
		return errs.Configuration("validation.max_failures must not be negative, got %d", c.Validation.MaxFailures)
	}
	if c.Validation.Concurrency < 0 {
		return errs.Configuration("validation.concurrency must not be negative, got %d", c.Validation.Concurrency)
	}
	if err := checkCheckpoints("validation.checkpoints", c.Validation.Checkpoints); err != nil {
		return err
	}
	for task, cps := range c.Validation.TaskCheckpoints {
		if err := checkCheckpoints("validation.task_checkpoints."+task, cps); err != nil {
			return err
		}
	}

	return nil
}

func checkCheckpoints(key string, checkpoints []float64) error {
	for _, cp := range checkpoints {
		if cp < 0 || cp > 100 {
			return errs.Configuration("%s: checkpoint %g is outside [0, 100]", key, cp)
		}
	}

	return nil
}
