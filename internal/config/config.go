package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Драйверы хранилища
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Storage  StorageConfig
	File     FileConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Prefix string `mapstructure:"prefix"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel переводит строковый уровень в slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// RegisterFlags добавляет флаги конфигурации в набор.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to YAML config file")
	fs.String("storage", DriverFile, "storage driver: file, memory, postgres or redis")
	fs.String("storage-prefix", "quizquirk:", "prefix for storage keys")
	fs.String("data-dir", DefaultDataDir(), "directory for the file storage driver")
	fs.String("postgres-dsn", "", "postgres connection string")
	fs.String("redis-addr", "localhost:6379", "redis address")
	fs.String("redis-password", "", "redis password")
	fs.Int("redis-db", 0, "redis database number")
	fs.String("catalog", "", "path to JSON quiz catalog, built-in quizzes if empty")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
}

// DefaultDataDir возвращает каталог истории по умолчанию:
// quizquirk в пользовательском каталоге конфигурации.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".quizquirk"
	}

	return filepath.Join(dir, "quizquirk")
}

// Load собирает конфигурацию из значений по умолчанию, файла, окружения
// (префикс QUIZQUIRK_) и флагов. Флаги имеют наивысший приоритет.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.prefix", "quizquirk:")
	v.SetDefault("file.dir", DefaultDataDir())
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("QUIZQUIRK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"storage.driver": "storage",
		"storage.prefix": "storage-prefix",
		"file.dir":       "data-dir",
		"postgres.dsn":   "postgres-dsn",
		"redis.addr":     "redis-addr",
		"redis.password": "redis-password",
		"redis.db":       "redis-db",
		"catalog.path":   "catalog",
		"log.level":      "log-level",
	}
	if fs != nil {
		for key, flag := range bindings {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}

		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("can not read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("can not decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.File.Dir == "" {
			return errors.New("file storage needs file.dir")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres storage needs postgres.dsn")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis storage needs redis.addr")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}
