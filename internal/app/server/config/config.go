package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env     string
	DB      db
	Server  server
	Logger  logger
	Sync    syncCfg
	Pairing pairing
}

type db struct {
	Driver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURI string `env:"DATABASE_URI"`
}

type server struct {
	RunAddress     string   `env:"RUN_ADDRESS" envDefault:":8765"`
	AdvertiseHost  string   `env:"ADVERTISE_HOST"`
	AdvertisePort  int      `env:"ADVERTISE_PORT" envDefault:"8765"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envDefault:"*"`
	AdminLocalOnly bool     `env:"ADMIN_LOCAL_ONLY" envDefault:"true"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL"`
	File     string `env:"LOG_FILE"`
}

type syncCfg struct {
	MaxBatchSize int `env:"MAX_SYNC_BATCH_SIZE" envDefault:"1000"`
}

type pairing struct {
	TokenTTL  time.Duration `env:"PAIRING_TOKEN_TTL" envDefault:"5m"`
	RateLimit int           `env:"PAIRING_RATE_LIMIT" envDefault:"20"`
}

// MustLoad загружает конфигурацию из .env и переменных окружения, завершая процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load(envPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load читает необязательные .env файлы, затем переменные окружения.
// Переменные окружения процесса имеют приоритет над .env.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8765")
	v.SetDefault("advertise_port", 8765)
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("admin_local_only", true)
	v.SetDefault("max_sync_batch_size", 1000)
	v.SetDefault("pairing_token_ttl", "5m")
	v.SetDefault("pairing_rate_limit", 20)

	cfg := &Config{
		Env: strings.ToLower(v.GetString("app_env")),
		DB: db{
			Driver:      strings.ToLower(v.GetString("db_driver")),
			DatabaseURI: v.GetString("database_uri"),
		},
		Server: server{
			RunAddress:     v.GetString("run_address"),
			AdvertiseHost:  v.GetString("advertise_host"),
			AdvertisePort:  v.GetInt("advertise_port"),
			CORSOrigins:    splitList(v.GetString("cors_origins")),
			AdminLocalOnly: v.GetBool("admin_local_only"),
		},
		Logger: logger{
			LogLevel: v.GetString("log_level"),
			File:     v.GetString("log_file"),
		},
		Sync: syncCfg{
			MaxBatchSize: v.GetInt("max_sync_batch_size"),
		},
		Pairing: pairing{
			TokenTTL:  v.GetDuration("pairing_token_ttl"),
			RateLimit: v.GetInt("pairing_rate_limit"),
		},
	}

	if cfg.DB.DatabaseURI == "" && cfg.DB.Driver == DriverSQLite {
		cfg.DB.DatabaseURI = "storymaster.db"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.DatabaseURI == "" {
		return errors.New("DATABASE_URI is required")
	}
	if c.Sync.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_SYNC_BATCH_SIZE must be positive, got %d", c.Sync.MaxBatchSize)
	}
	if c.Pairing.TokenTTL <= 0 {
		return fmt.Errorf("PAIRING_TOKEN_TTL must be positive, got %s", c.Pairing.TokenTTL)
	}
	if c.Server.AdvertisePort <= 0 || c.Server.AdvertisePort > 65535 {
		return fmt.Errorf("ADVERTISE_PORT out of range: %d", c.Server.AdvertisePort)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
