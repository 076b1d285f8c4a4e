package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Links     LinksConfig     `mapstructure:"links"`
	Cache     CacheConfig     `mapstructure:"cache"`
	GeoIP     GeoIPConfig     `mapstructure:"geoip"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	AuthToken      string `mapstructure:"auth_token"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type LinksConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	CodeLength  int    `mapstructure:"code_length"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

type CacheConfig struct {
	Driver  string        `mapstructure:"driver"` // memory, redis
	LinkTTL time.Duration `mapstructure:"link_ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

type GeoIPConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AnalyticsConfig struct {
	Timezone        string        `mapstructure:"timezone"`
	TopLocations    int           `mapstructure:"top_locations"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type RateLimitConfig struct {
	RedirectPerMinute int `mapstructure:"redirect_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level    string       `mapstructure:"level"`
	Format   string       `mapstructure:"format"`
	Output   string       `mapstructure:"output"`
	FilePath string       `mapstructure:"file_path"`
	Remote   RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig points at the log collector. An empty URL disables shipping.
type RemoteConfig struct {
	URL     string        `mapstructure:"url"`
	Stack   string        `mapstructure:"stack"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "file:shortr.db")
	v.SetDefault("database.auth_token", "")
	v.SetDefault("database.max_connections", 1)

	v.SetDefault("links.base_url", "http://localhost:3000")
	v.SetDefault("links.code_length", 6)
	v.SetDefault("links.max_attempts", 32)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.link_ttl", 5*time.Minute)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.namespace", "shortr")

	v.SetDefault("geoip.endpoint", "https://ipapi.co")
	v.SetDefault("geoip.timeout", 3*time.Second)

	v.SetDefault("analytics.timezone", "Local")
	v.SetDefault("analytics.top_locations", 5)
	v.SetDefault("analytics.refresh_interval", time.Minute)

	v.SetDefault("rate_limit.redirect_per_minute", 600)
	v.SetDefault("rate_limit.api_write_per_minute", 60)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.remote.url", "")
	v.SetDefault("logging.remote.stack", "frontend")
	v.SetDefault("logging.remote.timeout", 5*time.Second)
}

// Load reads the YAML file at path when it exists; every key has a default
// and can be overridden through SHORTR_* environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHORTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Links.BaseURL = strings.TrimRight(config.Links.BaseURL, "/")

	return &config, nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location resolves the analytics display time zone, falling back to local time.
func (c *Config) Location() *time.Location {
	if c.Analytics.Timezone == "" || c.Analytics.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
