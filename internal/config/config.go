package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alfagnish/users-gateway/internal/users"
)

// Config holds all service configuration loaded from environment variables
// and an optional YAML file. StoreBackend is "memory" or "sqlite"; DBPath is
// only read by the sqlite backend.
type Config struct {
	ListenAddr      string        `yaml:"listenAddr,omitempty"`
	StoreBackend    string        `yaml:"store,omitempty"`
	DBPath          string        `yaml:"dbPath,omitempty"`
	AllowedOrigins  []string      `yaml:"allowedOrigins,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() *Config {
	return &Config{
		ListenAddr:      envOrDefault("LISTEN_ADDR", ":3000"),
		StoreBackend:    envOrDefault("STORE_BACKEND", users.BackendMemory),
		DBPath:          envOrDefault("DB_PATH", "users.db"),
		AllowedOrigins:  splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: time.Duration(envOrDefaultInt64("SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
	}
}

// LoadFile overlays the YAML file at path onto base. Fields missing from
// the file keep their value from base.
func LoadFile(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case users.BackendMemory:
	case users.BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("store %q requires a database path", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)",
			c.StoreBackend, users.BackendMemory, users.BackendSQLite)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is empty")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
