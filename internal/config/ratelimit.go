package config

import "time"

// RateLimitConfig configures the token bucket guarding the login and
// registration endpoints.  Guessing a (username, user_id) pair is the only
// credential check the app has, so these two routes are throttled per client.
type RateLimitConfig struct {
    Enabled        bool          `yaml:"enabled"`
    Capacity       int           `yaml:"capacity"`
    RefillTokens   int           `yaml:"refill_tokens"`
    RefillInterval time.Duration `yaml:"refill_interval"`
    TTL            time.Duration `yaml:"ttl"`
    KeyStrategy    string        `yaml:"key_strategy"`
    Prefix         string        `yaml:"prefix"`
    Debug          bool          `yaml:"debug"`
}

func defaultRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled:        true,
        Capacity:       10,
        RefillTokens:   1,
        RefillInterval: 6 * time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_route",
        Prefix:         "rl",
    }
}

func (r *RateLimitConfig) applyEnvOverrides() {
    r.Enabled = envBool("RATE_LIMIT_ENABLED", r.Enabled)
    r.Capacity = envInt("RATE_LIMIT_CAPACITY", r.Capacity)
    r.RefillTokens = envInt("RATE_LIMIT_REFILL_TOKENS", r.RefillTokens)
    r.RefillInterval = envDur("RATE_LIMIT_REFILL_INTERVAL", r.RefillInterval)
    r.TTL = envDur("RATE_LIMIT_TTL", r.TTL)
    r.KeyStrategy = envStr("RATE_LIMIT_KEY_STRATEGY", r.KeyStrategy)
    r.Prefix = envStr("RATE_LIMIT_PREFIX", r.Prefix)
    r.Debug = envBool("RATE_LIMIT_DEBUG", r.Debug)
    if b := envInt("RATE_LIMIT_BURST", -1); b > 0 { r.Capacity = b }
    r.normalize()
}

func (r *RateLimitConfig) normalize() {
    if r.Capacity < 1 { r.Capacity = 1 }
    if r.RefillTokens < 1 { r.RefillTokens = 1 }
    if r.RefillInterval <= 0 { r.RefillInterval = time.Second }
    if minTTL := 5 * r.RefillInterval; r.TTL < minTTL { r.TTL = minTTL }
}
