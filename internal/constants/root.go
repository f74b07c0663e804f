package constants

import "time"

// SessionState represents the current screen of the TUI application
type SessionState int

const (
	AppName = "bookly"
	Version = "v0.3.0"

	// Secure storage keys
	KeyringUserAccessToken = "access-token"
	KeyringUserProfile     = "user-profile"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// TimeFormatSeconds is the HH:MM:SS form some backend endpoints emit for shift times
	TimeFormatSeconds = "15:04:05"

	// Slot constants
	SlotStepMin   = 30
	MinutesPerDay = 24 * 60

	// Calendar grid constants
	GridWeeks   = 6
	GridColumns = 7
	GridCells   = GridWeeks * GridColumns

	// HTTP constants
	DefaultRequestTimeout = 15 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 300 * time.Millisecond
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 5
	RequestIDHeader       = "X-Request-ID"
	IdempotencyKeyHeader  = "Idempotency-Key"

	// Cache constants
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	DefaultCacheTTL    = 5 * time.Minute
	RedisKeyPrefix     = "bookly:"

	// Review fan-out bound when listing businesses
	ReviewFetchConcurrency = 4

	// Token expiry leeway, tokens expiring within this window are treated as expired
	TokenExpiryLeeway = 30 * time.Second
)

// Session States
const (
	StateLogin SessionState = iota
	StateBusinesses
	StateBusiness
	StateCalendar
	StateSlots
	StateConfirm
	StateAppointments
)

// PublicEndpoints are sent without an Authorization header.
var PublicEndpoints = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
	"/auth/reset-password",
}
