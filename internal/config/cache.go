package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the catalog response cache.  Catalog data
// (products, categories) is read-only for this application, so cached pages
// only go stale through new reviews changing counts and sentiment; TTL bounds
// that window.  KeyStrategy picks the request parts that form the cache key
// ("route", "route_query", "method_route", "method_route_query").
type CacheConfig struct {
    Enabled      bool            `yaml:"enabled"`
    Methods      map[string]bool `yaml:"-"`
    MethodList   string          `yaml:"methods"`
    TTL          time.Duration   `yaml:"ttl"`
    KeyStrategy  string          `yaml:"key_strategy"`
    Prefix       string          `yaml:"prefix"`
    MaxBodyBytes int             `yaml:"max_body_bytes"`
}

func defaultCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      true,
        MethodList:   "GET",
        Methods:      parseMethods("GET"),
        TTL:          30 * time.Second,
        KeyStrategy:  "route_query",
        Prefix:       "catalog",
        MaxBodyBytes: 1 << 20,
    }
}

func (c *CacheConfig) applyEnvOverrides() {
    c.Enabled = envBool("CACHE_ENABLED", c.Enabled)
    c.MethodList = envStr("CACHE_METHODS", c.MethodList)
    c.Methods = parseMethods(c.MethodList)
    c.TTL = envDur("CACHE_TTL", c.TTL)
    c.KeyStrategy = envStr("CACHE_KEY_STRATEGY", c.KeyStrategy)
    c.Prefix = envStr("CACHE_PREFIX", c.Prefix)
    c.MaxBodyBytes = envInt("CACHE_MAX_BODY_BYTES", c.MaxBodyBytes)
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
