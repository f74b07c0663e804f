package constants

const (
	// Config keys
	SettingAPIBaseURL     = "api_base_url"
	SettingRequestTimeout = "request_timeout"
	SettingMaxRetries     = "max_retries"
	SettingRetryDelay     = "retry_delay"
	SettingRateLimitRPS   = "rate_limit_rps"
	SettingRateLimitBurst = "rate_limit_burst"
	SettingCacheBackend   = "cache_backend"
	SettingCachePath      = "cache_path"
	SettingCacheTTL       = "cache_ttl"
	SettingRedisAddr      = "redis_addr"
	SettingRedisPassword  = "redis_password"
	SettingRedisDB        = "redis_db"
	SettingTimezone       = "timezone"
	SettingWeekStart      = "week_start"
	SettingDebug          = "debug"
	SettingConfigDir      = "config_dir"

	// Default Settings Values
	DefaultAPIBaseURL = "http://localhost:3000/api"
	DefaultConfigDir  = "~/.config/bookly"
	DefaultCacheFile  = "cache.db"
	DefaultRedisAddr  = "localhost:6379"
	DefaultTimezone   = "Local" // Use system local timezone by default
	DefaultWeekStart  = "monday"
	EnvPrefix         = "BOOKLY"
	ConfigFileName    = "config"
)
