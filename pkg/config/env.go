package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvDispatchSecret    = "DISPATCH_SECRET"
	EnvDispatchInterval  = "DISPATCH_INTERVAL"
	EnvDispatchBatchSize = "DISPATCH_BATCH_SIZE"
	EnvDispatchWorkers   = "DISPATCH_WORKERS"

	EnvGatewayBaseURL = "GATEWAY_BASE_URL"
	EnvGatewayTimeout = "GATEWAY_TIMEOUT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultSlotDurationMin = "DEFAULT_SLOT_DURATION_MIN"
	EnvDefaultBufferTimeMin   = "DEFAULT_BUFFER_TIME_MIN"
	EnvDefaultStartOfDay      = "DEFAULT_START_OF_DAY"
	EnvDefaultEndOfDay        = "DEFAULT_END_OF_DAY"
	EnvDefaultMinAdvanceDays  = "DEFAULT_MIN_ADVANCE_DAYS"
	EnvDefaultMaxAdvanceDays  = "DEFAULT_MAX_ADVANCE_DAYS"
	EnvDefaultDeadlineHours   = "DEFAULT_DEADLINE_HOURS"
)
