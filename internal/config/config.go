package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симуляции
type Config struct {
	World   WorldConfig   `yaml:"world" toml:"world"`
	Player  PlayerConfig  `yaml:"player" toml:"player"`
	Sim     SimConfig     `yaml:"sim" toml:"sim"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
	Tracing TracingConfig `yaml:"tracing" toml:"tracing"`
}

type WorldConfig struct {
	Seed         int64  `yaml:"seed" toml:"seed"`
	ViewRadius   int    `yaml:"view_radius" toml:"view_radius"`
	DepthLimit   int    `yaml:"depth_limit" toml:"depth_limit"`
	Decorations  bool   `yaml:"decorations" toml:"decorations"`
	BlockCatalog string `yaml:"block_catalog" toml:"block_catalog"` // пусто - встроенный каталог
}

type PlayerConfig struct {
	Spawn        [2]float64 `yaml:"spawn" toml:"spawn"`                 // мировые пиксели
	BreakSpeed   float64    `yaml:"break_speed" toml:"break_speed"`     // прогресс разрушения в секунду
	PickupRadius float64    `yaml:"pickup_radius" toml:"pickup_radius"` // пиксели
	Health       float64    `yaml:"health" toml:"health"`
}

type SimConfig struct {
	Frames       int     `yaml:"frames" toml:"frames"`
	FPS          int     `yaml:"fps" toml:"fps"`
	CameraSpeed  float64 `yaml:"camera_speed" toml:"camera_speed"` // пикселей в секунду по X
	SnapshotPath string  `yaml:"snapshot_path" toml:"snapshot_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // json или console
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Address string `yaml:"address" toml:"address"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	ServiceName string `yaml:"service_name" toml:"service_name"`
	Endpoint    string `yaml:"endpoint" toml:"endpoint"`
}

// ErrInvalid возвращается Validate для недопустимых значений
var ErrInvalid = errors.New("invalid config")

// Load читает конфигурацию из YAML (.yaml, .yml) или TOML (.toml) поверх значений по умолчанию.
// Если path == "", используется ENV WORLDSIM_CONFIG, а без него - только значения по умолчанию.
// WORLDSIM_SEED переопределяет сид мира.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WORLDSIM_CONFIG")
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		return yaml.Unmarshal(data, cfg)
	}
	return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

// applyEnv применяет переменные окружения с приоритетом над файлом
func applyEnv(cfg *Config) error {
	if v := os.Getenv("WORLDSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WORLDSIM_SEED: %w", err)
		}
		cfg.World.Seed = seed
	}
	return nil
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Seed:        1,
			ViewRadius:  3,
			DepthLimit:  8,
			Decorations: true,
		},
		Player: PlayerConfig{
			Spawn:        [2]float64{0, -240},
			BreakSpeed:   4,
			PickupRadius: 45,
			Health:       100,
		},
		Sim: SimConfig{
			Frames:      600,
			FPS:         60,
			CameraSpeed: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Address: ":2112",
		},
		Tracing: TracingConfig{
			ServiceName: "tileworld",
			Endpoint:    "localhost:4318",
		},
	}
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return defaults()
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	switch {
	case c.World.ViewRadius < 1 || c.World.ViewRadius > 16:
		return fmt.Errorf("%w: world.view_radius %d out of [1,16]", ErrInvalid, c.World.ViewRadius)
	case c.World.DepthLimit < 1:
		return fmt.Errorf("%w: world.depth_limit must be positive", ErrInvalid)
	case c.Player.BreakSpeed <= 0:
		return fmt.Errorf("%w: player.break_speed must be positive", ErrInvalid)
	case c.Player.Health <= 0:
		return fmt.Errorf("%w: player.health must be positive", ErrInvalid)
	case c.Sim.FPS <= 0:
		return fmt.Errorf("%w: sim.fps must be positive", ErrInvalid)
	case c.Sim.Frames < 0:
		return fmt.Errorf("%w: sim.frames must not be negative", ErrInvalid)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
