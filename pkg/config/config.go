package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"time"

	"auravindex/pkg/client"
	"auravindex/pkg/logger"

	"github.com/joho/godotenv"
)

var (
	hoursRangeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoTransactions bool

	Port string

	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MaxRenewalsPerBooking    int
	MaxWindowDays            int
	PostRenewalExtensionDays int
	MinOccupancy             int
	MaxOccupancy             int
	WeekdayOperatingHours    string
	SaturdayOperatingHours   string
	OperatingTimezone        string
	LeaseTTL                 time.Duration

	ReconcileSchedule string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotenvErr := godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoTransactions: getEnvBool(EnvMongoTransactions, DefaultMongoTransactions),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		MaxRenewalsPerBooking:    getEnvNum(EnvMaxRenewalsPerBooking, DefaultMaxRenewalsPerBooking),
		MaxWindowDays:            getEnvNum(EnvMaxWindowDays, DefaultMaxWindowDays),
		PostRenewalExtensionDays: getEnvNum(EnvPostRenewalExtensionDays, DefaultPostRenewalExtensionDays),
		MinOccupancy:             getEnvNum(EnvMinOccupancy, DefaultMinOccupancy),
		MaxOccupancy:             getEnvNum(EnvMaxOccupancy, DefaultMaxOccupancy),
		WeekdayOperatingHours:    getEnvStr(EnvWeekdayOperatingHours, DefaultWeekdayOperatingHours),
		SaturdayOperatingHours:   getEnvStr(EnvSaturdayOperatingHours, DefaultSaturdayOperatingHours),
		OperatingTimezone:        getEnvStr(EnvOperatingTimezone, DefaultOperatingTimezone),
		LeaseTTL:                 getEnvDuration(EnvLeaseTTL, DefaultLeaseTTL),

		ReconcileSchedule: getEnvStr(EnvReconcileSchedule, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to load .env file", "error", dotenvErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LeaseTTL", cfg.LeaseTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.LeaseTTL <= cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("LeaseTTL (%s) must be longer than RequestTimeout (%s)", cfg.LeaseTTL, cfg.RequestTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.MaxRenewalsPerBooking < 0 {
		errors = append(errors, fmt.Sprintf("MaxRenewalsPerBooking cannot be negative, got: %d", cfg.MaxRenewalsPerBooking))
	}
	if cfg.MaxWindowDays <= 0 {
		errors = append(errors, fmt.Sprintf("MaxWindowDays must be positive, got: %d", cfg.MaxWindowDays))
	}
	if cfg.PostRenewalExtensionDays <= 0 {
		errors = append(errors, fmt.Sprintf("PostRenewalExtensionDays must be positive, got: %d", cfg.PostRenewalExtensionDays))
	}
	if cfg.MinOccupancy < 0 {
		errors = append(errors, fmt.Sprintf("MinOccupancy cannot be negative, got: %d", cfg.MinOccupancy))
	}
	if cfg.MaxOccupancy < cfg.MinOccupancy {
		errors = append(errors, fmt.Sprintf("MaxOccupancy (%d) must be >= MinOccupancy (%d)", cfg.MaxOccupancy, cfg.MinOccupancy))
	}
	if !hoursRangeRegex.MatchString(cfg.WeekdayOperatingHours) {
		errors = append(errors, fmt.Sprintf("WeekdayOperatingHours must be in HH:MM-HH:MM format, got: %s", cfg.WeekdayOperatingHours))
	}
	if !hoursRangeRegex.MatchString(cfg.SaturdayOperatingHours) {
		errors = append(errors, fmt.Sprintf("SaturdayOperatingHours must be in HH:MM-HH:MM format, got: %s", cfg.SaturdayOperatingHours))
	}
	if _, err := time.LoadLocation(cfg.OperatingTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("OperatingTimezone must be a valid IANA zone, got: %s", cfg.OperatingTimezone))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_transactions", cfg.MongoTransactions,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"max_renewals_per_booking", cfg.MaxRenewalsPerBooking,
		"max_window_days", cfg.MaxWindowDays,
		"post_renewal_extension_days", cfg.PostRenewalExtensionDays,
		"min_occupancy", cfg.MinOccupancy,
		"max_occupancy", cfg.MaxOccupancy,
		"weekday_operating_hours", cfg.WeekdayOperatingHours,
		"saturday_operating_hours", cfg.SaturdayOperatingHours,
		"operating_timezone", cfg.OperatingTimezone,
		"lease_ttl", cfg.LeaseTTL,
		"reconcile_schedule", cfg.ReconcileSchedule,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
