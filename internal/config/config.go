// Package config loads settings from a YAML file and OTTOLIFT_ environment
// variables. Every setting has a default, so a missing file is fine.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottolift/internal/domain"
)

type Config struct {
	LogLevel      string              `yaml:"log_level"`
	Storage       StorageConfig       `yaml:"storage"`
	Timers        TimersConfig        `yaml:"timers"`
	Server        ServerConfig        `yaml:"server"`
	Audio         AudioConfig         `yaml:"audio"`
	Notifications NotificationsConfig `yaml:"notifications"`
	WakeLock      WakeLockConfig      `yaml:"wake_lock"`
	Voice         VoiceConfig         `yaml:"voice"`
}

type StorageConfig struct {
	Driver   string        `yaml:"driver"` // memory, sqlite, postgres
	Path     string        `yaml:"path"`
	DSN      string        `yaml:"dsn"`
	Debounce time.Duration `yaml:"debounce"`
}

type TimersConfig struct {
	Tick         time.Duration  `yaml:"tick"`
	SupersetRest int            `yaml:"superset_rest"`
	RestDefaults map[string]int `yaml:"rest_defaults"`
	OverrideRest bool           `yaml:"override_rest"`
	IdleNudge    time.Duration  `yaml:"idle_nudge"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type AudioConfig struct {
	KeepAlive bool   `yaml:"keep_alive"`
	Chime     bool   `yaml:"chime"`
	ChimeWAV  string `yaml:"chime_wav"`
}

type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type WakeLockConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
}

type VoiceConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WhisperBin string `yaml:"whisper_bin"`
	Model      string `yaml:"model"`
	RecordSecs int    `yaml:"record_secs"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RestTimes converts the configured defaults to domain rest times.
func (t TimersConfig) RestTimes() domain.RestTimes {
	out := make(domain.RestTimes, len(t.RestDefaults))
	for k, v := range t.RestDefaults {
		out[domain.SetType(k)] = v
	}
	return out
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel: "normal",
		Storage: StorageConfig{
			Driver:   "sqlite",
			Path:     "ottolift.db",
			Debounce: 500 * time.Millisecond,
		},
		Timers: TimersConfig{
			Tick:         250 * time.Millisecond,
			SupersetRest: 10,
			RestDefaults: map[string]int{
				"normal":  90,
				"warmup":  60,
				"drop":    30,
				"timed":   60,
				"effort":  120,
				"failure": 180,
			},
			IdleNudge: 15 * time.Minute,
		},
		Server:        ServerConfig{Host: "127.0.0.1", Port: 7117},
		Audio:         AudioConfig{KeepAlive: true, Chime: true},
		Notifications: NotificationsConfig{Enabled: true},
		WakeLock:      WakeLockConfig{Enabled: true},
		Voice:         VoiceConfig{WhisperBin: "whisper-cli", RecordSecs: 2},
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. An empty path or a missing file yields the defaults.
// Env vars use the prefix OTTOLIFT_ and underscore-separated paths:
//
//	OTTOLIFT_LOG_LEVEL,
//	OTTOLIFT_STORAGE_DRIVER, OTTOLIFT_STORAGE_PATH, OTTOLIFT_STORAGE_DSN,
//	OTTOLIFT_STORAGE_DEBOUNCE, OTTOLIFT_TIMERS_TICK,
//	OTTOLIFT_TIMERS_SUPERSET_REST, OTTOLIFT_TIMERS_OVERRIDE_REST,
//	OTTOLIFT_SERVER_ENABLED, OTTOLIFT_SERVER_HOST, OTTOLIFT_SERVER_PORT,
//	OTTOLIFT_AUDIO_KEEP_ALIVE, OTTOLIFT_AUDIO_CHIME,
//	OTTOLIFT_WAKE_LOCK_ENABLED, OTTOLIFT_VOICE_ENABLED,
//	OTTOLIFT_VOICE_WHISPER_BIN, OTTOLIFT_VOICE_MODEL
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv("OTTOLIFT_" + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv("OTTOLIFT_" + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv("OTTOLIFT_" + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv("OTTOLIFT_" + key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str("LOG_LEVEL", &cfg.LogLevel)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_PATH", &cfg.Storage.Path)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	dur("STORAGE_DEBOUNCE", &cfg.Storage.Debounce)
	dur("TIMERS_TICK", &cfg.Timers.Tick)
	num("TIMERS_SUPERSET_REST", &cfg.Timers.SupersetRest)
	flag("TIMERS_OVERRIDE_REST", &cfg.Timers.OverrideRest)
	flag("SERVER_ENABLED", &cfg.Server.Enabled)
	str("SERVER_HOST", &cfg.Server.Host)
	num("SERVER_PORT", &cfg.Server.Port)
	flag("AUDIO_KEEP_ALIVE", &cfg.Audio.KeepAlive)
	flag("AUDIO_CHIME", &cfg.Audio.Chime)
	flag("WAKE_LOCK_ENABLED", &cfg.WakeLock.Enabled)
	flag("VOICE_ENABLED", &cfg.Voice.Enabled)
	str("VOICE_WHISPER_BIN", &cfg.Voice.WhisperBin)
	str("VOICE_MODEL", &cfg.Voice.Model)
}

var setTypes = map[string]bool{
	"normal": true, "warmup": true, "drop": true,
	"timed": true, "effort": true, "failure": true,
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of memory, sqlite, postgres", c.Storage.Driver)
	}
	if c.Storage.Debounce < 0 {
		return fmt.Errorf("storage.debounce must not be negative")
	}
	if c.Timers.Tick <= 0 {
		return fmt.Errorf("timers.tick must be positive")
	}
	if c.Timers.SupersetRest < 0 {
		return fmt.Errorf("timers.superset_rest must not be negative")
	}
	for k, v := range c.Timers.RestDefaults {
		if !setTypes[strings.ToLower(k)] {
			return fmt.Errorf("timers.rest_defaults: unknown set type %q", k)
		}
		if v < 0 {
			return fmt.Errorf("timers.rest_defaults.%s must not be negative", k)
		}
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Voice.Enabled && c.Voice.Model == "" {
		return fmt.Errorf("voice.model is required when voice is enabled")
	}
	return nil
}
