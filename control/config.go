// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Typed configuration: defaults, file, HIOLOAD_EXEC_* environment and
// command-line flags, merged by viper in that order of precedence.

package control

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. HIOLOAD_EXEC_EXECUTOR_KIND.
const EnvPrefix = "HIOLOAD_EXEC"

// ExecutorKind selects the executor implementation.
type ExecutorKind string

const (
	KindFixed       ExecutorKind = "fixed"
	KindSynchronous ExecutorKind = "synchronous"
)

// Config is the complete hioload-exec configuration.
type Config struct {
	Executor   ExecutorConfig   `mapstructure:"executor" yaml:"executor"`
	Reactor    ReactorConfig    `mapstructure:"reactor" yaml:"reactor"`
	Log        logger.Config    `mapstructure:"log" yaml:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
}

// ExecutorConfig configures the executor under load.
type ExecutorConfig struct {
	Kind                 ExecutorKind `mapstructure:"kind" yaml:"kind"`
	Name                 string       `mapstructure:"name" yaml:"name"`
	api.ThreadPoolLimits `mapstructure:",squash" yaml:",inline"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown-timeout" yaml:"shutdown-timeout"`
	Pin                  bool          `mapstructure:"pin" yaml:"pin"`
	FailPoints           []string      `mapstructure:"fail-points" yaml:"fail-points,omitempty"`
}

// ReactorConfig configures the reactor delivering session data.
type ReactorConfig struct {
	// Slice of wall time per RunFor call.
	RunFor time.Duration `mapstructure:"run-for" yaml:"run-for"`
	// Whether unbounded Run is allowed.
	AllowRun bool `mapstructure:"allow-run" yaml:"allow-run"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Address   string `mapstructure:"address" yaml:"address"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// SimulationConfig drives the run command: sessions receive data every
// Interval, Rounds times each.
type SimulationConfig struct {
	Sessions int           `mapstructure:"sessions" yaml:"sessions"`
	Rounds   int           `mapstructure:"rounds" yaml:"rounds"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Work     time.Duration `mapstructure:"work" yaml:"work"`
}

var defaults = map[string]any{
	"executor.kind":             string(KindFixed),
	"executor.name":             "",
	"executor.min-threads":      4,
	"executor.max-threads":      4,
	"executor.shutdown-timeout": "5s",
	"executor.pin":              false,
	"reactor.run-for":           "10ms",
	"reactor.allow-run":         true,
	"log.level":                 "info",
	"log.format":                "json",
	"log.file":                  "",
	"log.max-size-mb":           100,
	"log.max-backups":           3,
	"metrics.enabled":           false,
	"metrics.address":           ":9464",
	"metrics.namespace":         "hioload_exec",
	"simulation.sessions":       16,
	"simulation.rounds":         8,
	"simulation.interval":       "5ms",
	"simulation.work":           "1ms",
}

// flagKeys maps flag names to the config keys they override. A flag may
// set several keys.
var flagKeys = map[string][]string{
	"executor":         {"executor.kind"},
	"threads":          {"executor.min-threads", "executor.max-threads"},
	"shutdown-timeout": {"executor.shutdown-timeout"},
	"pin":              {"executor.pin"},
	"fail-points":      {"executor.fail-points"},
	"log-level":        {"log.level"},
	"log-format":       {"log.format"},
	"log-file":         {"log.file"},
	"metrics":          {"metrics.enabled"},
	"metrics-address":  {"metrics.address"},
	"sessions":         {"simulation.sessions"},
	"rounds":           {"simulation.rounds"},
	"interval":         {"simulation.interval"},
}

// BindFlags declares the override flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("executor", string(KindFixed), "executor kind: fixed or synchronous")
	fs.Int("threads", 4, "worker threads of the fixed executor")
	fs.Duration("shutdown-timeout", 5*time.Second, "executor shutdown deadline")
	fs.Bool("pin", false, "pin fixed executor workers to CPUs")
	fs.StringSlice("fail-points", nil, "fail points to register for inspection")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "json", "log format: json or console")
	fs.String("log-file", "", "rotate logs into this file instead of stdout")
	fs.Bool("metrics", false, "serve Prometheus metrics")
	fs.String("metrics-address", ":9464", "metrics listen address")
	fs.Int("sessions", 16, "simulated sessions")
	fs.Int("rounds", 8, "data deliveries per session")
	fs.Duration("interval", 5*time.Millisecond, "delay between deliveries")
}

// NewViper returns a viper instance with defaults, environment binding and,
// when fs is non-nil, the flags declared by BindFlags.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs == nil {
		return v, nil
	}
	for name, keys := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		for _, key := range keys {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("error while binding flag %q: %w", name, err)
			}
		}
	}
	return v, nil
}

// Load builds the configuration from path (optional, YAML), the
// environment and fs.
func Load(path string, fs *pflag.FlagSet) (*Config, *viper.Viper, error) {
	v, err := NewViper(fs)
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("error while reading the config file: %w", err)
		}
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Decode unmarshals and validates the configuration held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("error while unmarshaling the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Executor.Kind {
	case KindFixed:
		if err := c.Executor.ThreadPoolLimits.Validate(); err != nil {
			return err
		}
		if !c.Executor.IsFixed() {
			return api.ErrInvalidArgument.
				WithContext("limits", c.Executor.ThreadPoolLimits.String()).
				WithContext("reason", "fixed executor needs min-threads == max-threads")
		}
	case KindSynchronous:
	default:
		return api.ErrInvalidArgument.WithContext("executor.kind", string(c.Executor.Kind))
	}
	if c.Executor.ShutdownTimeout < 0 {
		return api.ErrInvalidArgument.WithContext("executor.shutdown-timeout", c.Executor.ShutdownTimeout.String())
	}
	if c.Reactor.RunFor <= 0 {
		return api.ErrInvalidArgument.WithContext("reactor.run-for", c.Reactor.RunFor.String())
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return api.ErrInvalidArgument.WithContext("log.level", c.Log.Level).WithCause(err)
	}
	if c.Simulation.Sessions < 0 || c.Simulation.Rounds < 0 || c.Simulation.Interval < 0 || c.Simulation.Work < 0 {
		return api.ErrInvalidArgument.WithContext("simulation", fmt.Sprintf("%+v", c.Simulation))
	}
	return nil
}
