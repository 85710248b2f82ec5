// Package config loads the asyncrun configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/Swind/go-executor/core"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "asyncrun.toml"

// Config is the decoded configuration file.
type Config struct {
	Executor ExecutorConfig `toml:"executor"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ExecutorConfig struct {
	Name          string `toml:"name"`
	QueueCapacity int    `toml:"queue_capacity"`
	PollHistory   int    `toml:"poll_history"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is json or console.
	Format string `toml:"format"`
}

type MetricsConfig struct {
	// Listen is the /metrics address; empty disables the server.
	Listen           string `toml:"listen"`
	SnapshotInterval string `toml:"snapshot_interval"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Executor: ExecutorConfig{
			Name:          "asyncrun",
			QueueCapacity: core.DefaultQueueCapacity,
			PollHistory:   100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			SnapshotInterval: "1s",
		},
	}
}

// Load reads path on top of Default. An empty path tries FileName and falls
// back to the defaults when it does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Executor.QueueCapacity <= 0 {
		return fmt.Errorf("[executor].queue_capacity must be positive, got %d", c.Executor.QueueCapacity)
	}
	if c.Executor.PollHistory < 0 {
		return fmt.Errorf("[executor].poll_history must not be negative, got %d", c.Executor.PollHistory)
	}
	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("[log].format must be json or console, got %q", c.Log.Format)
	}
	if _, err := c.Metrics.Interval(); err != nil {
		return err
	}
	return nil
}

// ZerologLevel parses Level.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("[log].level %q is not one of debug, info, warn, error", l.Level)
}

// Interval parses SnapshotInterval.
func (m MetricsConfig) Interval() (time.Duration, error) {
	if m.SnapshotInterval == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(m.SnapshotInterval)
	if err != nil {
		return 0, fmt.Errorf("[metrics].snapshot_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("[metrics].snapshot_interval must be positive, got %s", d)
	}
	return d, nil
}

// ExecutorConfig builds the core configuration. Handlers left nil get the
// core defaults.
func (c Config) ExecutorConfig(logger core.Logger, metrics core.Metrics) *core.ExecutorConfig {
	cfg := core.DefaultExecutorConfig()
	cfg.Name = c.Executor.Name
	cfg.QueueCapacity = c.Executor.QueueCapacity
	cfg.PollHistoryCapacity = c.Executor.PollHistory
	if logger != nil {
		cfg.Logger = logger
	}
	if metrics != nil {
		cfg.Metrics = metrics
	}
	return cfg
}
