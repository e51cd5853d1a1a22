package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8765"
	defaultEnv           = "local"
	defaultConfigDir     = ".storysync"
	defaultTimeout       = 30 * time.Second
	stateFile            = "state.yaml"
)

type Config struct {
	Env           string
	ServerAddress string
	LogLevel      string
	ConfigDir     string
	StatePath     string
	EnableTLS     bool
	Timeout       time.Duration
}

// Load загружает конфигурацию клиента из .env и переменных окружения (префикс SYNCCTL_)
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("syncctl")
	v.AutomaticEnv()

	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("enable_tls", false)

	configDir := v.GetString("config_dir")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configDir = filepath.Join(home, defaultConfigDir)
	}

	cfg := &Config{
		Env:           strings.ToLower(v.GetString("app_env")),
		ServerAddress: v.GetString("server_address"),
		LogLevel:      v.GetString("log_level"),
		ConfigDir:     configDir,
		StatePath:     filepath.Join(configDir, stateFile),
		EnableTLS:     v.GetBool("enable_tls"),
		Timeout:       v.GetDuration("timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return errors.New("server_address не может быть пустым")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout должен быть положительным, получено %s", c.Timeout)
	}
	return nil
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	if strings.Contains(c.ServerAddress, "://") {
		return strings.TrimRight(c.ServerAddress, "/")
	}
	scheme := "http://"
	if c.EnableTLS {
		scheme = "https://"
	}
	return scheme + strings.TrimRight(c.ServerAddress, "/")
}
