package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"javelin/pkg/dberrors"

	"github.com/goccy/go-yaml"
)

// Config - корневая структура конфигурации приложения
// yaml и validate теги для парсинга и валидации

type Config struct {
	Logger LoggerConfig `yaml:"logger" validate:"required"`
	DB     `yaml:"db" validate:"required"`
}

type DB struct {
	Memtable MemtableConfig `yaml:"memtable" validate:"required"`
}

// MemtableConfig holds the skip list shape of every buffer the memtable creates.
type MemtableConfig struct {
	Probability     float64 `yaml:"probability" validate:"required,gt=0,lt=1"`
	ExpectedNumKeys uint32  `yaml:"expected_num_keys" validate:"required,min=1"`
	MaxLevels       uint32  `yaml:"max_levels" validate:"required,min=1"`
	// Seed drives level generation. Zero picks a random seed per buffer.
	Seed uint64 `yaml:"seed"`
	// FlushQueueSize is the capacity of the frozen buffer queue. Zero disables the queue.
	FlushQueueSize int `yaml:"flush_queue_size" validate:"min=0"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "DEBUG",
			JSON:  false,
		},
		DB: DB{
			Memtable: DefaultMemtable(),
		},
	}
}

// DefaultMemtable returns the memtable shape used when nothing is configured.
func DefaultMemtable() MemtableConfig {
	return MemtableConfig{
		Probability:     0.5,
		ExpectedNumKeys: 10_000,
		MaxLevels:       32,
		FlushQueueSize:  3,
	}
}

// Load reads a YAML config from path. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("config file not found, using default config", "path", path)
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToUpper(c.Logger.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("%w: logger level %q", dberrors.ErrInvalidArgument, c.Logger.Level)
	}

	return c.DB.Memtable.Validate()
}

func (c MemtableConfig) Validate() error {
	if !(c.Probability > 0 && c.Probability < 1) {
		return fmt.Errorf("%w: memtable probability %v not in (0, 1)", dberrors.ErrInvalidArgument, c.Probability)
	}
	if c.ExpectedNumKeys < 1 {
		return fmt.Errorf("%w: memtable expected_num_keys must be positive", dberrors.ErrInvalidArgument)
	}
	if c.MaxLevels < 1 {
		return fmt.Errorf("%w: memtable max_levels must be positive", dberrors.ErrInvalidArgument)
	}
	if c.FlushQueueSize < 0 {
		return fmt.Errorf("%w: memtable flush_queue_size is negative", dberrors.ErrInvalidArgument)
	}

	return nil
}

// SlogLevel maps the configured level name onto slog.
func (l LoggerConfig) SlogLevel() slog.Level {
	switch strings.ToUpper(l.Level) {
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
