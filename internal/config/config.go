package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
)

// Config holds all configuration values.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`

	CacheBackend  string        `mapstructure:"cache_backend"`
	CachePath     string        `mapstructure:"cache_path"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`

	Timezone  string `mapstructure:"timezone"`
	WeekStart string `mapstructure:"week_start"`
	Debug     bool   `mapstructure:"debug"`
	ConfigDir string `mapstructure:"config_dir"`
}

// Options control where Load looks. Empty fields use the defaults.
type Options struct {
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// EnvFile is a dotenv file loaded before the environment is read.
	EnvFile string
}

// Load reads the configuration from, in increasing priority: defaults, the
// config file, the process environment (BOOKLY_*). A .env file, when present,
// populates the environment first without overriding variables already set.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(constants.ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(ExpandHome(v.GetString(constants.SettingConfigDir)))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.ConfigDir = ExpandHome(cfg.ConfigDir)
	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join(cfg.ConfigDir, constants.DefaultCacheFile)
	} else {
		cfg.CachePath = ExpandHome(cfg.CachePath)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.CacheBackend = strings.ToLower(cfg.CacheBackend)
	cfg.WeekStart = strings.ToLower(cfg.WeekStart)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(constants.SettingAPIBaseURL, constants.DefaultAPIBaseURL)
	v.SetDefault(constants.SettingRequestTimeout, constants.DefaultRequestTimeout)
	v.SetDefault(constants.SettingMaxRetries, constants.DefaultMaxRetries)
	v.SetDefault(constants.SettingRetryDelay, constants.DefaultRetryDelay)
	v.SetDefault(constants.SettingRateLimitRPS, constants.DefaultRateLimitRPS)
	v.SetDefault(constants.SettingRateLimitBurst, constants.DefaultRateLimitBurst)
	v.SetDefault(constants.SettingCacheBackend, constants.CacheBackendSQLite)
	v.SetDefault(constants.SettingCachePath, "")
	v.SetDefault(constants.SettingCacheTTL, constants.DefaultCacheTTL)
	v.SetDefault(constants.SettingRedisAddr, constants.DefaultRedisAddr)
	v.SetDefault(constants.SettingRedisPassword, "")
	v.SetDefault(constants.SettingRedisDB, 0)
	v.SetDefault(constants.SettingTimezone, constants.DefaultTimezone)
	v.SetDefault(constants.SettingWeekStart, constants.DefaultWeekStart)
	v.SetDefault(constants.SettingDebug, false)
	v.SetDefault(constants.SettingConfigDir, constants.DefaultConfigDir)
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute http(s) URL", constants.SettingAPIBaseURL, c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", constants.SettingRequestTimeout, c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", constants.SettingMaxRetries, c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%s cannot be negative, got %s", constants.SettingRetryDelay, c.RetryDelay)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must allow at least one request (rps=%v, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	switch c.CacheBackend {
	case constants.CacheBackendSQLite:
		if c.CachePath == "" {
			return fmt.Errorf("%s is required for the sqlite cache", constants.SettingCachePath)
		}
	case constants.CacheBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%s is required for the redis cache", constants.SettingRedisAddr)
		}
	default:
		return fmt.Errorf("unknown %s %q (expected %s or %s)", constants.SettingCacheBackend, c.CacheBackend,
			constants.CacheBackendSQLite, constants.CacheBackendRedis)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%s must be positive, got %s", constants.SettingCacheTTL, c.CacheTTL)
	}
	if !dates.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %s %q", constants.SettingTimezone, c.Timezone)
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		return fmt.Errorf("invalid %s %q (expected monday or sunday)", constants.SettingWeekStart, c.WeekStart)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return dates.LoadLocation(c.Timezone)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
