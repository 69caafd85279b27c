// Package config loads bot settings from an optional YAML file, an optional
// .env file and KHALA_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/brensch/khala/logging"
)

type Config struct {
	// Name is the bot name sent to the engine. Empty means khala_<playerID>.
	Name     string `yaml:"name"`
	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`

	// RecordDir enables the parquet turn recorder when set.
	RecordDir string `yaml:"record_dir"`
	// IndexPath enables the sqlite game index when set.
	IndexPath string `yaml:"index_path"`

	// WebSocketURL plays through a websocket relay instead of stdin/stdout.
	WebSocketURL   string        `yaml:"ws_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// SpawnUntilTurn is the last turn on which the policy builds ships.
	SpawnUntilTurn int `yaml:"spawn_until_turn"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogDir:         ".",
		LogLevel:       "info",
		ConnectTimeout: 10 * time.Second,
		SpawnUntilTurn: 200,
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.Name = getEnvOrDefault("KHALA_NAME", cfg.Name)
	cfg.LogDir = getEnvOrDefault("KHALA_LOG_DIR", cfg.LogDir)
	cfg.LogLevel = getEnvOrDefault("KHALA_LOG_LEVEL", cfg.LogLevel)
	cfg.RecordDir = getEnvOrDefault("KHALA_RECORD_DIR", cfg.RecordDir)
	cfg.IndexPath = getEnvOrDefault("KHALA_INDEX_PATH", cfg.IndexPath)
	cfg.WebSocketURL = getEnvOrDefault("KHALA_WS_URL", cfg.WebSocketURL)
	cfg.ConnectTimeout = getEnvDurationOrDefault("KHALA_CONNECT_TIMEOUT", cfg.ConnectTimeout)
	cfg.SpawnUntilTurn = getEnvIntOrDefault("KHALA_SPAWN_UNTIL_TURN", cfg.SpawnUntilTurn)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.SpawnUntilTurn < 0 {
		return fmt.Errorf("spawn_until_turn must not be negative, got %d", c.SpawnUntilTurn)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must not be negative, got %s", c.ConnectTimeout)
	}
	return nil
}

// BotName resolves the name announced to the engine.
func (c Config) BotName(playerID uint32) string {
	if c.Name != "" {
		return c.Name
	}
	return "khala_" + strconv.FormatUint(uint64(playerID), 10)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
