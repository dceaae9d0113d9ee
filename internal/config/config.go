// Package config loads unpacker settings from defaults, an optional config
// file, UNPACKER_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "UNPACKER"

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	Batch  BatchConfig  `mapstructure:"batch"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxConns     int           `mapstructure:"max_conns"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`

	// MaxUnpackedLen rejects requests whose expansion would be longer;
	// zero disables the check.
	MaxUnpackedLen uint64 `mapstructure:"max_unpacked_len"`
}

type BatchConfig struct {
	// Workers is the pool size; zero means one per CPU.
	Workers int `mapstructure:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxConns:       128,
			ReadTimeout:    10 * time.Second,
			MaxBodyBytes:   1 << 20,
			MaxUnpackedLen: 16 << 20,
		},
		Batch: BatchConfig{Workers: 0},
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"addr":           "server.addr",
	"max-conns":      "server.max_conns",
	"read-timeout":   "server.read_timeout",
	"max-body-bytes": "server.max_body_bytes",
	"max-unpacked":   "server.max_unpacked_len",
	"workers":        "batch.workers",
}

type LoadOptions struct {
	// ConfigFilePath is read when set; its format follows the extension.
	ConfigFilePath string

	// Flags may be nil. Only flags named in flagKeys are bound.
	Flags *pflag.FlagSet
}

func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.max_conns", defaults.Server.MaxConns)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.max_body_bytes", defaults.Server.MaxBodyBytes)
	v.SetDefault("server.max_unpacked_len", defaults.Server.MaxUnpackedLen)
	v.SetDefault("batch.workers", defaults.Batch.Workers)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFilePath, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("server.max_conns must not be negative, got %d", c.Server.MaxConns))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must not be negative, got %s", c.Server.ReadTimeout))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
