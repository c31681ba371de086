package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Type     string `mapstructure:"type"` // postgres, oracle, mongodb, couchbase
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Pool     struct {
		MaxConns int `mapstructure:"max_conns"`
		MinConns int `mapstructure:"min_conns"`
	} `mapstructure:"pool"`
	// QueryTimeout bounds every store round trip so a stalled database
	// cannot block a request indefinitely.
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// TrackingConfig controls the best-effort auto-log middleware.
type TrackingConfig struct {
	// ExcludedPaths are path prefixes the middleware never records, so the
	// stats and health endpoints do not pollute their own statistics.
	ExcludedPaths []string `mapstructure:"excluded_paths"`
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	PerIP   struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"per_ip"`
	Storage struct {
		Type  string `mapstructure:"type"` // memory, redis
		Redis struct {
			Host     string        `mapstructure:"host"`
			Port     int           `mapstructure:"port"`
			Password string        `mapstructure:"password"`
			DB       int           `mapstructure:"db"`
			Timeout  time.Duration `mapstructure:"timeout"`
		} `mapstructure:"redis"`
	} `mapstructure:"storage"`
}

const DefaultQueryTimeout = 5 * time.Second

// DefaultExcludedPaths keeps the service's own surface out of its stats.
var DefaultExcludedPaths = []string{"/track", "/stats", "/health", "/metrics"}

func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Dir(configPath))
	viper.SetConfigFile(configPath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.DB.QueryTimeout <= 0 {
		c.DB.QueryTimeout = DefaultQueryTimeout
	}
	if len(c.Tracking.ExcludedPaths) == 0 {
		c.Tracking.ExcludedPaths = DefaultExcludedPaths
	}
}

// Validate rejects configurations the service cannot start with. A missing
// database target is a fatal startup condition, not a runtime error.
func (c *Config) Validate() error {
	if c.DB.Type == "" {
		return fmt.Errorf("db.type is required")
	}
	if c.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if c.DB.Database == "" {
		return fmt.Errorf("db.database is required")
	}
	return nil
}
