package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/luxfi/broadcast/pkg/options"
	"github.com/luxfi/broadcast/pkg/transport"
)

const (
	configName = "bcast"
	envPrefix  = "BCAST"
)

// TargetOptionDefaults are the request parameters applied when a request
// does not set its own. Values use the same syntax as the parameters.
type TargetOptionDefaults struct {
	ExpandWildcards   string `mapstructure:"expand_wildcards"`
	IgnoreUnavailable string `mapstructure:"ignore_unavailable"`
	AllowNoTargets    string `mapstructure:"allow_no_targets"`
	IgnoreThrottled   string `mapstructure:"ignore_throttled"`
}

type Defaults struct {
	TargetOptions TargetOptionDefaults `mapstructure:"target_options"`
	Timeout       string               `mapstructure:"timeout"`
}

type Config struct {
	Environment    string   `mapstructure:"environment"`
	MaxMessageSize int      `mapstructure:"max_message_size"`
	Defaults       Defaults `mapstructure:"defaults"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("max_message_size", transport.MaxMessageSize)
	v.SetDefault("defaults.target_options.expand_wildcards", options.WildcardOpen)
	v.SetDefault("defaults.target_options.ignore_unavailable", "false")
	v.SetDefault("defaults.target_options.allow_no_targets", "true")
	v.SetDefault("defaults.target_options.ignore_throttled", "false")
	v.SetDefault("defaults.timeout", "")
}

// Load reads configuration from path, or from bcast.yaml in the working
// directory, $HOME/.bcast or /etc/bcast when path is empty. A missing file is
// not an error. BCAST_* environment variables override file values, e.g.
// BCAST_DEFAULTS_TIMEOUT=30s.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+configName))
		}
		v.AddConfigPath(filepath.Join("/etc", configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every value that is parsed lazily by the accessors.
func (c *Config) Validate() error {
	if c.MaxMessageSize <= 0 || c.MaxMessageSize > transport.MaxMessageSize {
		return fmt.Errorf("max_message_size must be in (0, %d], got %d", transport.MaxMessageSize, c.MaxMessageSize)
	}
	if _, err := c.DefaultTargetOptions(); err != nil {
		return err
	}
	if _, err := c.DefaultTimeout(); err != nil {
		return err
	}
	return nil
}

// DefaultTargetOptions overlays the configured parameters on the canonical
// default options.
func (c *Config) DefaultTargetOptions() (options.TargetOptions, error) {
	d := c.Defaults.TargetOptions
	opts, err := options.FromParameters(d.ExpandWildcards, d.IgnoreUnavailable, d.AllowNoTargets, d.IgnoreThrottled, options.Default())
	if err != nil {
		return options.TargetOptions{}, fmt.Errorf("defaults.target_options: %w", err)
	}
	return opts, nil
}

// DefaultTimeout returns nil when no default timeout is configured.
func (c *Config) DefaultTimeout() (*time.Duration, error) {
	return ParseTimeout("defaults.timeout", c.Defaults.Timeout)
}

// ParseTimeout parses an optional, non-negative duration. An empty value
// means no timeout.
func ParseTimeout(path, raw string) (*time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return nil, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return &d, nil
}

// TransportConfig builds the codec configuration.
func (c *Config) TransportConfig() *transport.Config {
	return &transport.Config{MaxMessageSize: c.MaxMessageSize}
}
