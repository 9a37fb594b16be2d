package config

import (
    "strings"
    "time"

    "github.com/kelseyhightower/envconfig"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  KeyStrategy decides which parts of the request form the
// cache key; the user id is always part of it.
type CacheConfig struct {
    Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
    MethodList   []string      `envconfig:"CACHE_METHODS" default:"GET"`
    TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
    KeyStrategy  string        `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
    Prefix       string        `envconfig:"CACHE_PREFIX" default:"cache"`
    MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`

    Methods map[string]bool `ignored:"true"`
}

// LoadCacheConfig reads CacheConfig and builds the upper-cased method set.
func LoadCacheConfig() (CacheConfig, error) {
    var c CacheConfig
    if err := envconfig.Process("", &c); err != nil {
        return CacheConfig{}, err
    }
    c.Methods = parseMethods(c.MethodList)
    if c.TTL <= 0 {
        c.TTL = time.Second
    }
    return c, nil
}

func parseMethods(list []string) map[string]bool {
    m := map[string]bool{}
    for _, p := range list {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
