package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL configuration constants and defaults.
const (
	// DefaultTTLSeconds is the default cache TTL (1 hour).
	DefaultTTLSeconds = 3600

	// MinTTLSeconds is the minimum allowed TTL (1 minute).
	MinTTLSeconds = 60

	// MaxTTLSeconds is the maximum allowed TTL (7 days).
	MaxTTLSeconds = 604800

	// EnvTTLSeconds overrides cache.ttl_seconds.
	EnvTTLSeconds = "QRBATCH_CACHE_TTL_SECONDS"

	// EnvCacheEnabled overrides cache.enabled.
	EnvCacheEnabled = "QRBATCH_CACHE_ENABLED"

	// EnvCacheDir overrides cache.directory.
	EnvCacheDir = "QRBATCH_CACHE_DIR"
)

// ErrInvalidTTL is returned for a TTL outside [MinTTLSeconds, MaxTTLSeconds].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ValidateTTL checks that seconds is within the allowed range.
func ValidateTTL(seconds int) error {
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return nil
}

// TTLFromEnv returns the TTL from the environment, or fallback when the
// variable is unset or invalid.
func TTLFromEnv(fallback int) int {
	envVal := os.Getenv(EnvTTLSeconds)
	if envVal == "" {
		return fallback
	}
	ttl, err := strconv.Atoi(envVal)
	if err != nil || ValidateTTL(ttl) != nil {
		return fallback
	}
	return ttl
}

// EnabledFromEnv returns the enabled flag from the environment, or fallback
// when the variable is unset or not a bool.
func EnabledFromEnv(fallback bool) bool {
	envVal := os.Getenv(EnvCacheEnabled)
	if envVal == "" {
		return fallback
	}
	enabled, err := strconv.ParseBool(envVal)
	if err != nil {
		return fallback
	}
	return enabled
}

// DirFromEnv returns the cache directory from the environment, or fallback.
func DirFromEnv(fallback string) string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return fallback
}

// ParseTTL parses integer seconds ("3600") or a duration ("1h", "90m").
func ParseTTL(s string) (int, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		return seconds, ValidateTTL(seconds)
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}
	seconds := int(duration.Seconds())
	return seconds, ValidateTTL(seconds)
}
