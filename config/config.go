package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverBolt     = "bolt"
)

type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Storage   StorageConfig     `yaml:"storage"`
	Database  DatabaseConfig    `yaml:"database"`
	Redis     RedisConfig       `yaml:"redis"`
	Session   SessionConfig     `yaml:"session"`
	Log       LogConfig         `yaml:"log"`
	Telemetry TelemetryConfig   `yaml:"telemetry"`
	Users     map[string]string `yaml:"users"` // username -> bcrypt hash
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	AppTitle string `yaml:"app_title"`
}

// StorageConfig picks the guest store backend. Path is used by sqlite and bolt.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type DatabaseConfig struct {
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	DBName         string        `yaml:"dbname"`
	SSLMode        string        `yaml:"sslmode"`
	MaxConns       int32         `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DSN renders the connection as a postgres URL, escaping credentials.
// Sessions run in UTC.
func (d *DatabaseConfig) DSN() string {
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	q.Set("timezone", "UTC")
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

func (r *RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

var AppConfig *Config

// Load builds the configuration from defaults, an optional YAML file
// (GUESTLIST_CONFIG_PATH) and environment overrides, in that order.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("GUESTLIST_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

func LoadTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Host:           "localhost",
		Port:           "5433", // test postgres
		User:           "postgres",
		Password:       "postgres",
		DBName:         "test_db",
		SSLMode:        "disable",
		MaxConns:       4,
		ConnectTimeout: 2 * time.Second, // skip fast when nothing listens
	}
	cfg.Redis = RedisConfig{
		Enabled:        true,
		Host:           "localhost",
		Port:           "6380", // test redis
		Password:       "",
		DB:             1,
		ConnectTimeout: 2 * time.Second,
	}
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     "5000",
			AppTitle: "Wedding Guest List",
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "data/wedding_list.db",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "postgres",
			DBName:         "postgres",
			SSLMode:        "disable",
			MaxConns:       10, // a handful of household users
			ConnectTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			Host:           "localhost",
			Port:           "6379",
			ConnectTimeout: 5 * time.Second,
		},
		Session: SessionConfig{
			CookieName: "guestlist_session",
			TTL:        7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "wedding-guest-list",
		},
		Users: map[string]string{},
	}
}

func applyEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Path = getEnv("STORAGE_PATH", cfg.Storage.Path)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", cfg.Database.SSLMode)

	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_ENABLED: %w", err)
		}
		cfg.Redis.Enabled = enabled
	}
	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		cfg.Session.TTL = ttl
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Telemetry.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite, DriverBolt:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != DriverPostgres && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverPostgres && c.Database.MaxConns < 1 {
		return fmt.Errorf("database max_conns must be at least 1")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
