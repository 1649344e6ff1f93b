package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv       string `mapstructure:"APP_ENV"`
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type ServerConfig struct {
	Port      string        `mapstructure:"SERVER_PORT"`
	Timeout   time.Duration `mapstructure:"SERVER_TIMEOUT"`
	APIPrefix string        `mapstructure:"API_V1_PREFIX"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DB_URL"`
	Echo            bool          `mapstructure:"DB_ECHO"`
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

// RedisConfig leaves caching off when Addr is empty.
type RedisConfig struct {
	Addr     string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	TTL      time.Duration `mapstructure:"CACHE_TTL"`

	BreakerThreshold int           `mapstructure:"CACHE_BREAKER_THRESHOLD"`
	BreakerCooldown  time.Duration `mapstructure:"CACHE_BREAKER_COOLDOWN"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	Burst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_TIMEOUT", 30*time.Second)
	v.SetDefault("API_V1_PREFIX", "")
	v.SetDefault("DB_URL", "sqlite://storefront.db")
	v.SetDefault("DB_ECHO", false)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 5*time.Minute)
	v.SetDefault("CACHE_BREAKER_THRESHOLD", 5)
	v.SetDefault("CACHE_BREAKER_COOLDOWN", 30*time.Second)
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

// Load reads .env (if any) and the process environment through the global viper,
// so values bound from command line flags take precedence.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env dosyası yüklenemedi: %w", err)
	}

	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config

	cfg.AppEnv = v.GetString("APP_ENV")
	cfg.LogLevel = v.GetString("LOG_LEVEL")
	cfg.OTLPEndpoint = v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")

	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.Timeout = v.GetDuration("SERVER_TIMEOUT")
	cfg.Server.APIPrefix = v.GetString("API_V1_PREFIX")

	cfg.Database.URL = v.GetString("DB_URL")
	cfg.Database.Echo = v.GetBool("DB_ECHO")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.TTL = v.GetDuration("CACHE_TTL")
	cfg.Redis.BreakerThreshold = v.GetInt("CACHE_BREAKER_THRESHOLD")
	cfg.Redis.BreakerCooldown = v.GetDuration("CACHE_BREAKER_COOLDOWN")

	cfg.RateLimit.RPS = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")

	if cfg.Database.URL == "" {
		return nil, errors.New("DB_URL boş olamaz")
	}

	return &cfg, nil
}
