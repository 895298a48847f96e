// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

// переменная окружения с путём к конфигу
const PathEnv = "TASKKEEPER_CONFIG"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Validation ValidationConfig `yaml:"validation"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimit       int           `yaml:"rate_limit"` // запросов в минуту на IP
}

type StorageConfig struct {
	Type          string `yaml:"type"` // "memory", "file", "sqlite", "postgres" или "redis"
	Key           string `yaml:"key"`
	Path          string `yaml:"path"`
	URL           string `yaml:"url"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type ValidationConfig struct {
	// IANA-имя зоны, по которой определяется "сегодня" для проверки дедлайна
	Timezone string `yaml:"timezone"`
}

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
		},
		Storage: StorageConfig{
			Type: StorageFile,
			Key:  "tasks",
			Path: "tasks.json",
		},
		Logging:    LoggingConfig{Development: true},
		Validation: ValidationConfig{Timezone: "Local"},
	}
}

// Load читает конфиг по пути из TASKKEEPER_CONFIG или config.yml.
// Отсутствующий файл по умолчанию не ошибка - берутся значения Default.
func Load() (*Config, error) {
	path := os.Getenv(PathEnv)
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg, err := LoadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageRedis:
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path обязателен для типа %q", c.Storage.Type)
		}
	case StoragePostgres:
		if c.Storage.URL == "" {
			return fmt.Errorf("storage.url обязателен для типа %q", c.Storage.Type)
		}
	default:
		return fmt.Errorf("неизвестный storage.type %q", c.Storage.Type)
	}

	if c.Storage.Key == "" {
		return errors.New("storage.key не может быть пустым")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location возвращает зону для политики "сегодня" в валидации форм
func (c *Config) Location() (*time.Location, error) {
	if c.Validation.Timezone == "" || c.Validation.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Validation.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неверная validation.timezone %q: %w", c.Validation.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
