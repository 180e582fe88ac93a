package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/room_desk/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendTypeHTTP = "http"
	BackendTypeFile = "file"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Cache   CacheConfig
	Session SessionConfig
	Forms   FormsConfig
	Misc    MiscConfig
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutDownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins string
}

// BackendConfig selects and configures the remote data gateway.
type BackendConfig struct {
	Type         string
	BaseURL      string
	Timeout      time.Duration
	DataFilePath string
}

type CacheConfig struct {
	StaleAfter      time.Duration
	IdleTTL         time.Duration
	JanitorInterval time.Duration
}

type SessionConfig struct {
	Store         string
	CookieName    string
	CookieSecure  bool
	TTL           time.Duration
	SweepInterval time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type FormsConfig struct {
	RequireCoffeeDescription bool
	DefaultPageSize          int
	MaxPageSize              int
	RoomOptionsLimit         int
}

type MiscConfig struct {
	GinMode           string
	LogLevel          string
	HoneybadgerAPIKey string
	Env               string
}

// LoadConfig reads config.yaml (if any), .env (if any) and ROOM_DESK_* env vars.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot load .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnvOrDefault("ROOM_DESK_CONFIG_PATH", "./config"))

	setDefaults(v)

	v.SetEnvPrefix("ROOM_DESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Info("no config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort(v, "PORT", "server.port")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               port,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		Backend: BackendConfig{
			Type:         strings.ToLower(v.GetString("backend.type")),
			BaseURL:      v.GetString("backend.base_url"),
			Timeout:      v.GetDuration("backend.timeout"),
			DataFilePath: v.GetString("backend.data_file_path"),
		},
		Cache: CacheConfig{
			StaleAfter:      v.GetDuration("cache.stale_after"),
			IdleTTL:         v.GetDuration("cache.idle_ttl"),
			JanitorInterval: v.GetDuration("cache.janitor_interval"),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(v.GetString("session.store")),
			CookieName:    v.GetString("session.cookie_name"),
			CookieSecure:  v.GetBool("session.cookie_secure"),
			TTL:           v.GetDuration("session.ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
			RedisAddr:     v.GetString("session.redis_addr"),
			RedisPassword: v.GetString("session.redis_password"),
			RedisDB:       v.GetInt("session.redis_db"),
			KeyPrefix:     v.GetString("session.key_prefix"),
		},
		Forms: FormsConfig{
			RequireCoffeeDescription: v.GetBool("forms.require_coffee_description"),
			DefaultPageSize:          v.GetInt("forms.default_page_size"),
			MaxPageSize:              v.GetInt("forms.max_page_size"),
			RoomOptionsLimit:         v.GetInt("forms.room_options_limit"),
		},
		Misc: MiscConfig{
			GinMode:           v.GetString("misc.gin_mode"),
			LogLevel:          v.GetString("misc.log_level"),
			HoneybadgerAPIKey: getEnvOrDefault("HONEYBADGER_API_KEY", v.GetString("misc.honeybadger_api_key")),
			Env:               getEnvOrDefault("GO_ENV", v.GetString("misc.env")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 5*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("backend.type", BackendTypeHTTP)
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.data_file_path", "./config/data/backend.json")

	v.SetDefault("cache.stale_after", 0)
	v.SetDefault("cache.idle_ttl", 5*time.Minute)
	v.SetDefault("cache.janitor_interval", time.Minute)

	v.SetDefault("session.store", SessionStoreMemory)
	v.SetDefault("session.cookie_name", "room_desk_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.sweep_interval", 10*time.Minute)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.key_prefix", "room_desk:session:")

	v.SetDefault("forms.require_coffee_description", false)
	v.SetDefault("forms.default_page_size", 10)
	v.SetDefault("forms.max_page_size", 100)
	v.SetDefault("forms.room_options_limit", 100)

	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.log_level", "info")
	v.SetDefault("misc.env", "production")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 || c.Server.ShutDownTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}

	switch c.Backend.Type {
	case BackendTypeHTTP:
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backend base url is not absolute: %q", c.Backend.BaseURL)
		}
		if c.Backend.Timeout <= 0 {
			return errors.New("backend timeout must be positive")
		}
	case BackendTypeFile:
		if c.Backend.DataFilePath == "" {
			return errors.New("backend data file path is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown backend type: %q (supported: %s, %s)", c.Backend.Type, BackendTypeHTTP, BackendTypeFile)
	}

	if c.Cache.StaleAfter < 0 {
		return errors.New("cache stale_after must not be negative")
	}
	if c.Cache.IdleTTL <= 0 || c.Cache.JanitorInterval <= 0 {
		return errors.New("cache idle_ttl and janitor_interval must be positive")
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Session.RedisAddr == "" {
			return errors.New("session redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown session store: %q (supported: %s, %s)", c.Session.Store, SessionStoreMemory, SessionStoreRedis)
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name is required")
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		return errors.New("session ttl and sweep_interval must be positive")
	}

	if c.Forms.DefaultPageSize <= 0 || c.Forms.MaxPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}
	if c.Forms.DefaultPageSize > c.Forms.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", c.Forms.DefaultPageSize, c.Forms.MaxPageSize)
	}
	if c.Forms.RoomOptionsLimit <= 0 {
		return errors.New("room options limit must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrViperPort prefers a plain env var (PORT on most PaaS) over viper.
func getEnvOrViperPort(v *viper.Viper, envKey, viperKey string) (int, error) {
	if value := os.Getenv(envKey); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", envKey, err)
		}
		return port, nil
	}
	return v.GetInt(viperKey), nil
}
