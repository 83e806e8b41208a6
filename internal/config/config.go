package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Load.
const (
	configPathEnv = "CAMPUSLEND_CONFIG"
	dbPathEnv     = "CAMPUSLEND_DB"
	addrEnv       = "CAMPUSLEND_ADDR"
	logFileEnv    = "CAMPUSLEND_LOG"
)

// Config holds the server settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig describes optional log file output.
type LogConfig struct {
	File string `yaml:"file"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("cannot read config file, falling back to defaults", "path", path, "error", err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("cannot parse config file, falling back to defaults", "path", path, "error", err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logFileEnv); v != "" {
		c.Log.File = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}
	if override.Log.File != "" {
		base.Log.File = override.Log.File
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "campuslend.sqlite3"},
		Log:      LogConfig{File: ""},
	}
}
