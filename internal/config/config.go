package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds quicklinks settings.
type Config struct {
	Endpoint       string
	Key            string
	KeyEnv         string
	KeyringService string
	Cookie         string
	Broker         string

	StorePath  string
	LegacyPath string

	LogPath   string
	LogLevel  string
	LogFormat string

	SyncInterval   time.Duration
	RequestTimeout time.Duration

	Tracing      string
	OTLPEndpoint string
}

const (
	defaultConfigPath     = "~/.config/quicklinks/config.toml"
	defaultStorePath      = "~/.local/share/quicklinks/quicklinks.db"
	defaultLegacyPath     = "~/.local/share/quicklinks/state.json"
	defaultLogPath        = "~/.local/state/quicklinks/quicklinks.log"
	defaultKeyEnv         = "QUICKLINKS_KEY"
	defaultKeyringService = "quicklinks"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultTracing        = "none"
	defaultSyncInterval   = 24 * time.Hour
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		KeyEnv:         defaultKeyEnv,
		KeyringService: defaultKeyringService,
		StorePath:      mustExpand(defaultStorePath),
		LegacyPath:     mustExpand(defaultLegacyPath),
		LogPath:        mustExpand(defaultLogPath),
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		SyncInterval:   defaultSyncInterval,
		Tracing:        defaultTracing,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Endpoint       string `toml:"endpoint"`
		Key            string `toml:"key"`
		KeyEnv         string `toml:"key_env"`
		KeyringService string `toml:"keyring_service"`
		Cookie         string `toml:"cookie"`
		Broker         string `toml:"broker"`
		StorePath      string `toml:"store_path"`
		LegacyPath     string `toml:"legacy_path"`
		LogPath        string `toml:"log_path"`
		LogLevel       string `toml:"log_level"`
		LogFormat      string `toml:"log_format"`
		SyncInterval   string `toml:"sync_interval"`
		RequestTimeout string `toml:"request_timeout"`
		Tracing        string `toml:"tracing"`
		OTLPEndpoint   string `toml:"otlp_endpoint"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Endpoint = strings.TrimSpace(raw.Endpoint)
	cfg.Key = strings.TrimSpace(raw.Key)
	cfg.Cookie = strings.TrimSpace(raw.Cookie)
	cfg.Broker = strings.TrimSpace(raw.Broker)
	cfg.OTLPEndpoint = strings.TrimSpace(raw.OTLPEndpoint)
	cfg.KeyEnv = orDefault(raw.KeyEnv, defaultKeyEnv)
	cfg.KeyringService = orDefault(raw.KeyringService, defaultKeyringService)
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel))
	cfg.LogFormat = strings.ToLower(orDefault(raw.LogFormat, defaultLogFormat))
	cfg.Tracing = strings.ToLower(orDefault(raw.Tracing, defaultTracing))

	cfg.StorePath = mustExpand(orDefault(raw.StorePath, defaultStorePath))
	cfg.LegacyPath = mustExpand(orDefault(raw.LegacyPath, defaultLegacyPath))
	cfg.LogPath = mustExpand(orDefault(raw.LogPath, defaultLogPath))

	if cfg.SyncInterval, err = parseDuration("sync_interval", raw.SyncInterval, defaultSyncInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, 0); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// StateDir returns the directory holding the primary store.
func (c Config) StateDir() string {
	return filepath.Dir(c.StorePath)
}

func orDefault(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: must not be negative", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
