package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tutorhub"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultDispatchInterval  = 1 * time.Hour
	DefaultDispatchBatchSize = 50
	DefaultDispatchWorkers   = 4

	DefaultGatewayTimeout = 10 * time.Second

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// Availability defaults applied when a teacher has no record yet:
	// Mon-Fri 09:00-17:00, 60-minute slots with a 15-minute buffer,
	// bookable 1-30 days ahead, 24h cancellation/reschedule deadlines.
	DefaultSlotDurationMin   = 60
	DefaultBufferTimeMin     = 15
	DefaultDefaultStartOfDay = "09:00"
	DefaultDefaultEndOfDay   = "17:00"
	DefaultMinAdvanceDays    = 1
	DefaultMaxAdvanceDays    = 30
	DefaultDeadlineHours     = 24
)

var DefaultWorkingDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
