package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends for the users snapshot.
const (
	StoreCookie = "cookie"
	StoreFile   = "file"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Server captures process-level configuration.
type Server struct {
	Addr         string `yaml:"addr"`
	Store        string `yaml:"store"`
	UsersFile    string `yaml:"users_file"`
	SessionStore string `yaml:"session_store"`
	CookieSecure bool   `yaml:"cookie_secure"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`

	Redis RedisConfig `yaml:"redis"`
	Audit AuditConfig `yaml:"audit"`
}

// RedisConfig configures the session store connection.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// AuditConfig selects the audit sink. Empty brokers keeps events in memory.
// MemoryCapacity bounds how many recent events the in-memory sink retains.
type AuditConfig struct {
	KafkaBrokers   []string `yaml:"kafka_brokers"`
	Topic          string   `yaml:"topic"`
	MemoryCapacity int      `yaml:"memory_capacity"`
}

// Defaults returns the development configuration.
func Defaults() Server {
	return Server{
		Addr:         ":8080",
		Store:        StoreCookie,
		UsersFile:    "./storage/users.json",
		SessionStore: SessionMemory,
		LogLevel:     "info",
		LogFormat:    "json",
		Redis: RedisConfig{
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			SessionTTL:   24 * time.Hour,
		},
		Audit: AuditConfig{Topic: "userdir.audit", MemoryCapacity: 1000},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// USERDIR_CONFIG if set, then environment variables.
func Load() (Server, error) {
	cfg := Defaults()
	if path := os.Getenv("USERDIR_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Server{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c *Server) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Server) applyEnv(getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Addr, "USERDIR_ADDR")
	setString(&c.Store, "USERDIR_STORE")
	setString(&c.UsersFile, "USERDIR_USERS_FILE")
	setString(&c.SessionStore, "USERDIR_SESSION_STORE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Audit.Topic, "AUDIT_TOPIC")

	if v := getenv("COOKIE_SECURE"); v != "" {
		c.CookieSecure = v == "true"
	}
	if v := getenv("AUDIT_MEMORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audit.MemoryCapacity = n
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Audit.KafkaBrokers = brokers
	}
}

// Validate rejects unknown backends and missing dependencies.
func (c Server) Validate() error {
	switch c.Store {
	case StoreCookie:
	case StoreFile:
		if c.UsersFile == "" {
			return fmt.Errorf("users file path is required for the %s store", StoreFile)
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreCookie, StoreFile)
	}

	switch c.SessionStore {
	case SessionMemory:
	case SessionRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s session store", SessionRedis)
		}
	default:
		return fmt.Errorf("unknown session store %q (want %s or %s)", c.SessionStore, SessionMemory, SessionRedis)
	}

	if c.Audit.MemoryCapacity <= 0 {
		return fmt.Errorf("audit memory capacity must be positive, got %d", c.Audit.MemoryCapacity)
	}
	if len(c.Audit.KafkaBrokers) > 0 && c.Audit.Topic == "" {
		return fmt.Errorf("audit topic is required when kafka brokers are set")
	}
	return nil
}
