package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "auravindex"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = true

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultMaxRenewalsPerBooking    = 2
	DefaultMaxWindowDays            = 15
	DefaultPostRenewalExtensionDays = 7
	DefaultMinOccupancy             = 1
	DefaultMaxOccupancy             = 10
	DefaultWeekdayOperatingHours    = "07:00-20:00"
	DefaultSaturdayOperatingHours   = "08:00-12:00"
	DefaultOperatingTimezone        = "UTC"
	DefaultLeaseTTL                 = 45 * time.Second
)
