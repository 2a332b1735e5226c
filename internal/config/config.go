package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every configuration failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultConfigFile is read from the working directory when no explicit path is given.
const DefaultConfigFile = "run-config.json"

// EnvPrefix prefixes every environment variable, e.g. HERMES_RETRY_MAX_ATTEMPTS.
const EnvPrefix = "HERMES"

const runIDLayout = "20060102_150405"

// Config holds the configuration settings for a resolution run.
// Keys follow the config file layout; nested keys are joined with a dot.
type Config struct {
	Env       string  `mapstructure:"env"`                                                      // Env is the current environment: local, development, production.
	Depot     string  `mapstructure:"depot"      validate:"required"`                           // Depot is the start/end address of the run.
	Input     string  `mapstructure:"input"      validate:"required"`                           // Input is the address list file.
	OutRoot   string  `mapstructure:"out_root"   validate:"required"`                           // OutRoot is the root for run output directories.
	CacheRoot string  `mapstructure:"cache_root" validate:"required"`                           // CacheRoot is the root for cached geocoding results.
	APIKey    string  `mapstructure:"api_key"    validate:"required_unless=Provider nominatim"` // APIKey is the provider credential.
	Profile   string  `mapstructure:"profile"    validate:"required"`                           // Profile is the routing profile recorded with the run.
	Provider  string  `mapstructure:"provider"   validate:"oneof=openrouteservice google nominatim visicom"`
	Country   string  `mapstructure:"country"    validate:"omitempty,len=2"` // Country biases provider results.
	BaseURL   string  `mapstructure:"base_url"   validate:"omitempty,url"`   // BaseURL overrides the provider endpoint.
	Timezone  string  `mapstructure:"timezone"   validate:"required"`        // Timezone is used to name runs.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`           // RateLimit caps provider requests per second, 0 is unlimited.

	HTTP     HTTPConfig     `mapstructure:"http"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

// HTTPConfig holds the upstream HTTP timeouts.
type HTTPConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// RetryConfig bounds provider attempts per address.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"    validate:"gte=1"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gte=0"`
	Multiplier     float64       `mapstructure:"multiplier"      validate:"gte=1"`
}

// CacheConfig selects the geocode cache backend.
type CacheConfig struct {
	Backend string        `mapstructure:"backend" validate:"oneof=file redis"`
	TTL     time.Duration `mapstructure:"ttl"     validate:"gte=0"` // TTL applies to redis entries only.
}

// RedisConfig struct holds the configuration details for the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`     // Addr is host:port of the redis server.
	Password string `mapstructure:"password"` // Password is the redis password.
	DB       int    `mapstructure:"db"       validate:"gte=0"`
}

// DatabaseConfig enables run persistence when URL is set.
type DatabaseConfig struct {
	URL string `mapstructure:"url"` // URL is a postgres connection string.
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"depot":    "depot",
	"input":    "input",
	"out":      "out_root",
	"cache":    "cache_root",
	"provider": "provider",
	"api-key":  "api_key",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("depot", "")
	v.SetDefault("input", "")
	v.SetDefault("out_root", "output")
	v.SetDefault("cache_root", "cache")
	v.SetDefault("api_key", "")
	v.SetDefault("profile", "driving-car")
	v.SetDefault("provider", "openrouteservice")
	v.SetDefault("country", "CA")
	v.SetDefault("base_url", "")
	v.SetDefault("timezone", "America/Toronto")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("http.connect_timeout", "10s")
	v.SetDefault("http.request_timeout", "20s")
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_backoff", "400ms")
	v.SetDefault("retry.multiplier", 2)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.ttl", "0s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.url", "")
}

// Load builds the configuration from defaults, an optional config file, HERMES_*
// environment variables and the flags in flags, each overriding the previous one.
// An explicit path that cannot be read is an error; a missing default file is not.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file %s: %w", ErrInvalidConfig, path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("%w: failed to bind flag %s: %w", ErrInvalidConfig, name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.trim()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) trim() {
	for _, field := range []*string{
		&c.Env, &c.Depot, &c.Input, &c.OutRoot, &c.CacheRoot, &c.APIKey, &c.Profile,
		&c.Provider, &c.Country, &c.BaseURL, &c.Timezone, &c.Cache.Backend,
		&c.Redis.Addr, &c.Database.URL,
	} {
		*field = strings.TrimSpace(*field)
	}
}

func (c *Config) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	var problems []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		problems = append(problems, "missing required field: redis.addr")
	}
	if _, err := time.LoadLocation(c.Timezone); c.Timezone != "" && err != nil {
		problems = append(problems, fmt.Sprintf("invalid value for timezone: %q", c.Timezone))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

func describe(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")

	switch fe.Tag() {
	case "required", "required_unless":
		return "missing required field: " + key
	default:
		return fmt.Sprintf("invalid value for %s: %v (%s %s)", key, fe.Value(), fe.Tag(), fe.Param())
	}
}

// Location returns the time zone used to name runs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RunConfig resolves the configured paths to absolute ones and freezes them into a RunConfig.
func (c *Config) RunConfig(runID string) (models.RunConfig, error) {
	paths := map[string]string{"input": c.Input, "out_root": c.OutRoot, "cache_root": c.CacheRoot}
	abs := make(map[string]string, len(paths))

	for key, path := range paths {
		resolved, err := filepath.Abs(path)
		if err != nil {
			return models.RunConfig{}, fmt.Errorf("%w: failed to resolve %s: %w", ErrInvalidConfig, key, err)
		}
		abs[key] = resolved
	}

	return models.RunConfig{
		DepotAddress: c.Depot,
		InputFile:    abs["input"],
		OutRoot:      abs["out_root"],
		CacheRoot:    abs["cache_root"],
		RunID:        runID,
		APIKey:       c.APIKey,
		Profile:      c.Profile,
	}, nil
}

// NewRunID names a run after its start time in loc, e.g. 20260301_120000.
func NewRunID(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(runIDLayout)
}
