package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Config is the complete service configuration. Values come from an optional
// TOML file (CONFIG_FILE), then the environment, which always wins.
type Config struct {
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`

	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	SMTP     SMTPConfig     `toml:"smtp"`
	App      AppConfig      `toml:"app"`

	// GeneratedSecret is set when no JWT secret was configured.
	GeneratedSecret bool `toml:"-"`
}

type DatabaseConfig struct {
	URL             string        `toml:"url"`
	MaxConns        int32         `toml:"max_conns"`
	MaxConnLifetime time.Duration `toml:"max_conn_lifetime"`
}

type AuthConfig struct {
	JWTSecret       string        `toml:"jwt_secret"`
	JWKSURL         string        `toml:"jwks_url"`
	AccessTokenTTL  time.Duration `toml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `toml:"refresh_token_ttl"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	UseSSL        bool   `toml:"use_ssl"`
	InvoiceBucket string `toml:"invoice_bucket"`
	LogoBucket    string `toml:"logo_bucket"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type AppConfig struct {
	PublicBaseURL      string `toml:"public_base_url"`
	DefaultLanguage    string `toml:"default_language"`
	DefaultCurrency    string `toml:"default_currency"`
	DefaultPhoneRegion string `toml:"default_phone_region"`
}

func defaults() *Config {
	return &Config{
		Port:     8080,
		LogLevel: "info",
		Database: DatabaseConfig{MaxConns: 10, MaxConnLifetime: time.Hour},
		Auth: AuthConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Minio: MinioConfig{
			Endpoint:      "localhost:9000",
			AccessKey:     "minioadmin",
			SecretKey:     "minioadmin",
			InvoiceBucket: "invoices",
			LogoBucket:    "logos",
		},
		SMTP: SMTPConfig{Host: "localhost", Port: 25, From: "no-reply@fakti.local"},
		App: AppConfig{
			PublicBaseURL:      "http://localhost:8080",
			DefaultLanguage:    "en",
			DefaultCurrency:    "HTG",
			DefaultPhoneRegion: "HT",
		},
	}
}

// Load reads .env when present, the optional TOML file and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		// Development only: tokens do not survive a restart.
		cfg.Auth.JWTSecret = random.String(32)
		cfg.GeneratedSecret = true
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.JWKSURL, "JWKS_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Minio.InvoiceBucket, "MINIO_INVOICE_BUCKET")
	setString(&cfg.Minio.LogoBucket, "MINIO_LOGO_BUCKET")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "DEFAULT_FROM_EMAIL")
	setString(&cfg.App.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.App.DefaultLanguage, "DEFAULT_LANGUAGE")
	setString(&cfg.App.DefaultCurrency, "DEFAULT_CURRENCY")
	setString(&cfg.App.DefaultPhoneRegion, "DEFAULT_PHONE_REGION")

	if err := setInt(&cfg.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.SMTP.Port, "SMTP_PORT"); err != nil {
		return err
	}
	if err := setBool(&cfg.Minio.UseSSL, "MINIO_USE_SSL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Auth.AccessTokenTTL, "ACCESS_TOKEN_TTL"); err != nil {
		return err
	}
	return setDuration(&cfg.Auth.RefreshTokenTTL, "REFRESH_TOKEN_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
