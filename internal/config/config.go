package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dvloznov/fio-node/internal/fio"
)

// Config holds node configuration.
type Config struct {
	Fio  FioConfig
	Log  LogConfig
	API  APIConfig
	Node NodeConfig
}

// FioConfig holds the bank API credential and endpoint.
type FioConfig struct {
	Token   string
	BaseURL string `mapstructure:"base_url"`
	Timeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// APIConfig holds HTTP surface settings.
type APIConfig struct {
	Port      string
	AuthToken string `mapstructure:"auth_token"`
}

// NodeConfig holds defaults for node execution.
type NodeConfig struct {
	ContinueOnFail bool `mapstructure:"continue_on_fail"`
}

// Load reads configuration from file and env. Env var overrides use prefix FIO_,
// e.g. FIO_FIO_TOKEN or FIO_LOG_LEVEL. FIO_CONFIG points at an explicit TOML file.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("fio.token", "")
	v.SetDefault("fio.base_url", fio.DefaultBaseURL)
	v.SetDefault("fio.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.auth_token", "")
	v.SetDefault("node.continue_on_fail", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("FIO_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "fio-node"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate reports settings the node cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Fio.Token) == "" {
		return errors.New("fio.token is required (set FIO_FIO_TOKEN or the config file)")
	}
	if c.Fio.Timeout < 0 {
		return fmt.Errorf("fio.timeout must not be negative, got %s", c.Fio.Timeout)
	}
	return nil
}
