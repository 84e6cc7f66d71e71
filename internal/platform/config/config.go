// Package config builds runtime configuration from the environment so main
// stays lean. Defaults live here; policy thresholds are inputs, not
// hard-coded business logic.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config aggregates all runtime configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Privacy  Privacy
	Consent  Consent
	Cache    Cache
	Retry    Retry
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Postgres captures optional durable-store configuration. Empty URL means
// in-memory stores.
type Postgres struct {
	URL string
}

// Redis captures optional cache backend configuration. Empty URL means the
// in-memory cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Privacy holds anonymization policy defaults per anonymization level.
// HIPAA safe harbor is satisfied by the k-anonymity floor; epsilon caps
// bound cumulative differential-privacy spend per session.
type Privacy struct {
	SafeHarborK     int
	BasicEpsilon    float64
	EnhancedEpsilon float64
	MaximumEpsilon  float64
	Delta           float64
	Sensitivity     float64
	JitterHours     int
	HashSalt        string
}

// Consent holds consent ledger policy inputs.
type Consent struct {
	WithdrawalGracePeriod time.Duration
}

// Cache holds query result cache policy.
type Cache struct {
	TTL time.Duration
}

// Retry bounds storage retry behavior. Governance-state errors are never
// retried; these settings apply to storage/timeout failures only.
type Retry struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	StorageTimeout time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envString("VEIL_ADDR", ":8080"),
			JWTSigningKey: envString("VEIL_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Postgres: Postgres{
			URL: os.Getenv("VEIL_POSTGRES_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("VEIL_REDIS_URL"),
			PoolSize:     envInt("VEIL_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VEIL_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("VEIL_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VEIL_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VEIL_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Privacy: Privacy{
			SafeHarborK:     envInt("VEIL_SAFE_HARBOR_K", 5),
			BasicEpsilon:    envFloat("VEIL_EPSILON_BASIC", 2.0),
			EnhancedEpsilon: envFloat("VEIL_EPSILON_ENHANCED", 1.0),
			MaximumEpsilon:  envFloat("VEIL_EPSILON_MAXIMUM", 0.5),
			Delta:           envFloat("VEIL_DP_DELTA", 1e-5),
			Sensitivity:     envFloat("VEIL_DP_SENSITIVITY", 1.0),
			JitterHours:     envInt("VEIL_JITTER_HOURS", 72),
			HashSalt:        envString("VEIL_HASH_SALT", "dev-salt-change-in-production"),
		},
		Consent: Consent{
			WithdrawalGracePeriod: envDuration("VEIL_WITHDRAWAL_GRACE_PERIOD", 24*time.Hour),
		},
		Cache: Cache{
			TTL: envDuration("VEIL_CACHE_TTL", time.Hour),
		},
		Retry: Retry{
			MaxAttempts:    envInt("VEIL_RETRY_MAX_ATTEMPTS", 3),
			InitialBackoff: envDuration("VEIL_RETRY_INITIAL_BACKOFF", 50*time.Millisecond),
			StorageTimeout: envDuration("VEIL_STORAGE_TIMEOUT", 10*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
