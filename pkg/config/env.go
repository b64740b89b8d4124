package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoTransactions = "MONGO_TRANSACTIONS"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxRenewalsPerBooking    = "MAX_RENEWALS_PER_BOOKING"
	EnvMaxWindowDays            = "MAX_WINDOW_DAYS"
	EnvPostRenewalExtensionDays = "POST_RENEWAL_EXTENSION_DAYS"
	EnvMinOccupancy             = "MIN_OCCUPANCY"
	EnvMaxOccupancy             = "MAX_OCCUPANCY"
	EnvWeekdayOperatingHours    = "WEEKDAY_OPERATING_HOURS"
	EnvSaturdayOperatingHours   = "SATURDAY_OPERATING_HOURS"
	EnvOperatingTimezone        = "OPERATING_TIMEZONE"
	EnvLeaseTTL                 = "LEASE_TTL"

	EnvReconcileSchedule = "RECONCILE_SCHEDULE"
)
