package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"tutorhub/pkg/client"
	"tutorhub/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	DispatchSecret    string
	DispatchInterval  time.Duration
	DispatchBatchSize int
	DispatchWorkers   int

	GatewayBaseURL string
	GatewayTimeout time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultSlotDurationMin int
	DefaultBufferTimeMin   int
	DefaultStartOfDay      string
	DefaultEndOfDay        string
	DefaultMinAdvanceDays  int
	DefaultMaxAdvanceDays  int
	DefaultDeadlineHours   int

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		DispatchSecret:    getEnvStr(EnvDispatchSecret, ""),
		DispatchInterval:  getEnvDuration(EnvDispatchInterval, DefaultDispatchInterval),
		DispatchBatchSize: getEnvNum(EnvDispatchBatchSize, DefaultDispatchBatchSize),
		DispatchWorkers:   getEnvNum(EnvDispatchWorkers, DefaultDispatchWorkers),

		GatewayBaseURL: getEnvStr(EnvGatewayBaseURL, ""),
		GatewayTimeout: getEnvDuration(EnvGatewayTimeout, DefaultGatewayTimeout),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultSlotDurationMin: getEnvNum(EnvDefaultSlotDurationMin, DefaultSlotDurationMin),
		DefaultBufferTimeMin:   getEnvNum(EnvDefaultBufferTimeMin, DefaultBufferTimeMin),
		DefaultStartOfDay:      getEnvStr(EnvDefaultStartOfDay, DefaultDefaultStartOfDay),
		DefaultEndOfDay:        getEnvStr(EnvDefaultEndOfDay, DefaultDefaultEndOfDay),
		DefaultMinAdvanceDays:  getEnvNum(EnvDefaultMinAdvanceDays, DefaultMinAdvanceDays),
		DefaultMaxAdvanceDays:  getEnvNum(EnvDefaultMaxAdvanceDays, DefaultMaxAdvanceDays),
		DefaultDeadlineHours:   getEnvNum(EnvDefaultDeadlineHours, DefaultDeadlineHours),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.DispatchInterval <= 0 {
		errors = append(errors, fmt.Sprintf("DispatchInterval must be positive, got: %s", cfg.DispatchInterval))
	}
	if cfg.DispatchBatchSize <= 0 {
		errors = append(errors, fmt.Sprintf("DispatchBatchSize must be positive, got: %d", cfg.DispatchBatchSize))
	}
	if cfg.DispatchWorkers <= 0 {
		errors = append(errors, fmt.Sprintf("DispatchWorkers must be positive, got: %d", cfg.DispatchWorkers))
	}
	if cfg.GatewayTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("GatewayTimeout must be positive, got: %s", cfg.GatewayTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if !timeRegex.MatchString(cfg.DefaultStartOfDay) {
		errors = append(errors, fmt.Sprintf("DefaultStartOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultStartOfDay))
	}
	if !timeRegex.MatchString(cfg.DefaultEndOfDay) {
		errors = append(errors, fmt.Sprintf("DefaultEndOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultEndOfDay))
	}
	if cfg.DefaultSlotDurationMin <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultSlotDurationMin must be positive, got: %d", cfg.DefaultSlotDurationMin))
	}
	if cfg.DefaultBufferTimeMin < 0 {
		errors = append(errors, fmt.Sprintf("DefaultBufferTimeMin cannot be negative, got: %d", cfg.DefaultBufferTimeMin))
	}
	if cfg.DefaultMinAdvanceDays < 0 {
		errors = append(errors, fmt.Sprintf("DefaultMinAdvanceDays cannot be negative, got: %d", cfg.DefaultMinAdvanceDays))
	}
	if cfg.DefaultMaxAdvanceDays < cfg.DefaultMinAdvanceDays {
		errors = append(errors, fmt.Sprintf("DefaultMaxAdvanceDays (%d) must be >= DefaultMinAdvanceDays (%d)", cfg.DefaultMaxAdvanceDays, cfg.DefaultMinAdvanceDays))
	}
	if cfg.DefaultDeadlineHours < 0 {
		errors = append(errors, fmt.Sprintf("DefaultDeadlineHours cannot be negative, got: %d", cfg.DefaultDeadlineHours))
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
		"port", cfg.Port,
		"dispatch_secret_set", cfg.DispatchSecret != "",
		"dispatch_interval", cfg.DispatchInterval,
		"dispatch_batch_size", cfg.DispatchBatchSize,
		"dispatch_workers", cfg.DispatchWorkers,
		"gateway_base_url_set", cfg.GatewayBaseURL != "",
		"gateway_timeout", cfg.GatewayTimeout,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"default_slot_duration_min", cfg.DefaultSlotDurationMin,
		"default_buffer_time_min", cfg.DefaultBufferTimeMin,
		"default_start_of_day", cfg.DefaultStartOfDay,
		"default_end_of_day", cfg.DefaultEndOfDay,
		"default_min_advance_days", cfg.DefaultMinAdvanceDays,
		"default_max_advance_days", cfg.DefaultMaxAdvanceDays,
		"default_deadline_hours", cfg.DefaultDeadlineHours,
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
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
	if offset < 0 {
		return 0
	}
	return offset
}
