package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvProduction = "production"

// Config holds environment-based settings
type Config struct {
	Environment    string
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string
	LogLevel       string

	// PlayerTimezone is the civil zone every schedule is evaluated in.
	PlayerTimezone string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL   string
	RefreshInterval time.Duration

	EnrichConcurrency int
	EnrichTimeout     time.Duration

	UploadDir       string
	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment:    v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		PlayerTimezone: v.GetString("PLAYER_TIMEZONE"),

		RedisAddress:  v.GetString("REDIS_ADDRESS"),
		RedisUsername: v.GetString("REDIS_USERNAME"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		MQTTBrokerURL: v.GetString("MQTT_BROKER_URL"),

		EnrichConcurrency: v.GetInt("ENRICH_CONCURRENCY"),

		UploadDir:       v.GetString("UPLOAD_DIR"),
		UseSpaces:       v.GetBool("USE_SPACES"),
		SpacesEndpoint:  v.GetString("SPACES_ENDPOINT"),
		SpacesRegion:    v.GetString("SPACES_REGION"),
		SpacesBucket:    v.GetString("SPACES_BUCKET"),
		SpacesCDNURL:    v.GetString("SPACES_CDN_URL"),
		SpacesAccessKey: v.GetString("SPACES_ACCESS_KEY"),
		SpacesSecretKey: v.GetString("SPACES_SECRET_KEY"),
	}

	var err error
	if cfg.RefreshInterval, err = parseDuration("REFRESH_INTERVAL", v.GetString("REFRESH_INTERVAL")); err != nil {
		return nil, err
	}
	if cfg.EnrichTimeout, err = parseDuration("ENRICH_TIMEOUT", v.GetString("ENRICH_TIMEOUT")); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("MIGRATIONS_PATH", "./migrations")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PLAYER_TIMEZONE", "UTC")
	v.SetDefault("REFRESH_INTERVAL", "30s")
	v.SetDefault("ENRICH_CONCURRENCY", 8)
	v.SetDefault("ENRICH_TIMEOUT", "5s")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("USE_SPACES", false)
}

func parseDuration(key, raw string) (time.Duration, error) {
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := time.LoadLocation(c.PlayerTimezone); err != nil {
		errs = append(errs, fmt.Errorf("PLAYER_TIMEZONE: %w", err))
	}
	if c.EnrichConcurrency <= 0 {
		errs = append(errs, errors.New("ENRICH_CONCURRENCY must be positive"))
	}
	if c.UseSpaces && (c.SpacesBucket == "" || c.SpacesCDNURL == "") {
		errs = append(errs, errors.New("SPACES_BUCKET and SPACES_CDN_URL are required when USE_SPACES is set"))
	}
	return errors.Join(errs...)
}
