package config

import "time"

// CacheConfig controls the Redis cache in front of the public
// availability endpoint.  The TTL is only a backstop: the booking
// facade deletes an event's cache key inside every successful reserve
// and cancel, so a cached availability never outlives a ledger change.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads the availability cache settings from the
// environment.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "avail"),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
