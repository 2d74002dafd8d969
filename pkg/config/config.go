package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/fxboard/pkg/engine"
	"github.com/cuemby/fxboard/pkg/storage"
)

// Engine link modes
const (
	EngineWebSocket = "websocket"
	EngineLoopback  = "loopback"
)

// Storage backends
const (
	StorageBolt  = "bolt"
	StorageRedis = "redis"
)

// Config is the fxboard configuration file
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type EngineConfig struct {
	Mode        string        `yaml:"mode"`
	URL         string        `yaml:"url"`
	InDevice    string        `yaml:"inDevice"`
	OutDevice   string        `yaml:"outDevice"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
	SendBuffer  int           `yaml:"sendBuffer"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend"`
	DataDir string      `yaml:"dataDir"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Engine: EngineConfig{
			Mode:        EngineWebSocket,
			URL:         "ws://127.0.0.1:9000/engine",
			InDevice:    engine.DefaultDevice,
			OutDevice:   engine.DefaultDevice,
			DialTimeout: 5 * time.Second,
			SendBuffer:  64,
		},
		Storage: StorageConfig{
			Backend: StorageBolt,
			DataDir: "./fxboard-data",
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: storage.DefaultRedisPrefix,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9090",
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults, and so
// does a path that does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks modes, backends and required fields
func (c *Config) Validate() error {
	switch c.Engine.Mode {
	case EngineWebSocket:
		if c.Engine.URL == "" {
			return fmt.Errorf("engine.url is required in %s mode", EngineWebSocket)
		}
	case EngineLoopback:
	default:
		return fmt.Errorf("invalid engine.mode: %q (must be '%s' or '%s')", c.Engine.Mode, EngineWebSocket, EngineLoopback)
	}
	if c.Engine.SendBuffer < 0 {
		return fmt.Errorf("engine.sendBuffer must be >= 0, got %d", c.Engine.SendBuffer)
	}

	switch c.Storage.Backend {
	case StorageBolt:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.dataDir is required for the %s backend", StorageBolt)
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the %s backend", StorageRedis)
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q (must be '%s' or '%s')", c.Storage.Backend, StorageBolt, StorageRedis)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}
