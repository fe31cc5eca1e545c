package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rinser/feedtail/domain"
)

const (
	envPrefix         = "FEEDTAIL"
	envConfigPath     = "FEEDTAIL_CONFIG"
	defaultConfigName = "config.yaml"
	appDirName        = "feedtail"
)

// Config holds application-level configuration.
type Config struct {
	Port           int           `mapstructure:"port" yaml:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ReadLimit      int64         `mapstructure:"read_limit" yaml:"read_limit"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	StatePath      string        `mapstructure:"state_path" yaml:"state_path"`
}

// Default returns the configuration used when nothing is overridden.
// File paths live under the user config dir when it can be determined.
func Default() Config {
	cfg := Config{
		Port:           domain.DefaultPort,
		RequestTimeout: 10 * time.Second,
		ReadLimit:      64 << 10,
		LogLevel:       "info",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.LogFile = filepath.Join(dir, appDirName, "feedtail.log")
		cfg.StatePath = filepath.Join(dir, appDirName, "ui_state.json")
	}
	return cfg
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 1-65535", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout %s: must be positive", c.RequestTimeout)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("invalid read_limit %d: must be positive", c.ReadLimit)
	}
	return nil
}

// Load builds configuration from defaults, an optional YAML file and env vars.
// Precedence: defaults < config file < FEEDTAIL_* env vars < caller overrides.
//
//	FEEDTAIL_CONFIG           config file path (default: <user config dir>/feedtail/config.yaml)
//	FEEDTAIL_PORT             feed server port (default: 1234)
//	FEEDTAIL_REQUEST_TIMEOUT  snapshot request timeout (default: 10s)
//	FEEDTAIL_READ_LIMIT       max stream message size in bytes (default: 65536)
//	FEEDTAIL_LOG_LEVEL        debug, info, warn, error, disabled (default: info)
//	FEEDTAIL_LOG_FILE         log file path
//	FEEDTAIL_STATE_PATH       UI state file path
//
// A missing config file is created with the defaults. The resolved path is returned.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("port", cfg.Port)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("read_limit", cfg.ReadLimit)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("state_path", cfg.StatePath)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
		if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil {
			if logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			}
		} else if logger != nil {
			logger.Info().Str("path", configPath).Msg("created default config")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, configPath, err
	}

	return cfg, configPath, nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName, defaultConfigName)
	}
	return defaultConfigName
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
