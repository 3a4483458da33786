package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cancellation policies supported by the reservation engine.
const (
	CancelPolicyOwnerOnly     = "owner_only"
	CancelPolicyAdminOverride = "admin_override"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Booking   BookingConfig
	Schedule  ScheduleConfig
	Cache     CacheConfig
	ClaimSync ClaimSyncConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds verification parameters for externally issued access tokens.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BookingConfig tunes the reservation engine.
type BookingConfig struct {
	CancelPolicy string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// ScheduleConfig governs schedule materialization.
type ScheduleConfig struct {
	Timezone string
}

// CacheConfig governs the day-view read cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ClaimSyncConfig tunes the authorized-email change feed workers.
type ClaimSyncConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Booking = BookingConfig{
		CancelPolicy: normalizeCancelPolicy(v.GetString("BOOKING_CANCEL_POLICY")),
		MaxAttempts:  v.GetInt("BOOKING_MAX_ATTEMPTS"),
		RetryBackoff: parseDuration(v.GetString("BOOKING_RETRY_BACKOFF"), 25*time.Millisecond),
	}

	cfg.Schedule = ScheduleConfig{
		Timezone: v.GetString("SCHEDULE_TIMEZONE"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_DAY_CACHE"),
		TTL:     parseDuration(v.GetString("DAY_CACHE_TTL"), 2*time.Minute),
	}

	cfg.ClaimSync = ClaimSyncConfig{
		Workers:    v.GetInt("CLAIM_SYNC_WORKERS"),
		BufferSize: v.GetInt("CLAIM_SYNC_BUFFER"),
		MaxRetries: v.GetInt("CLAIM_SYNC_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("CLAIM_SYNC_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "slot_booking")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BOOKING_CANCEL_POLICY", CancelPolicyOwnerOnly)
	v.SetDefault("BOOKING_MAX_ATTEMPTS", 5)
	v.SetDefault("BOOKING_RETRY_BACKOFF", "25ms")

	v.SetDefault("SCHEDULE_TIMEZONE", "Local")

	v.SetDefault("ENABLE_DAY_CACHE", false)
	v.SetDefault("DAY_CACHE_TTL", "2m")

	v.SetDefault("CLAIM_SYNC_WORKERS", 1)
	v.SetDefault("CLAIM_SYNC_BUFFER", 16)
	v.SetDefault("CLAIM_SYNC_MAX_RETRIES", 3)
	v.SetDefault("CLAIM_SYNC_RETRY_DELAY", "1s")
}

func normalizeCancelPolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CancelPolicyAdminOverride:
		return CancelPolicyAdminOverride
	default:
		return CancelPolicyOwnerOnly
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
