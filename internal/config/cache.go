package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig drives the Redis response cache sitting in front of the board
// listing.  The listing is by far the hottest endpoint and is identical for
// every anonymous visitor, so even a short TTL absorbs most of the read load.
// Caching is skipped entirely when Enabled is false or no Redis client could
// be built.  Methods lists the HTTP methods eligible for caching.
// KeyStrategy selects which request parts form the cache key; the board needs
// "route_query" because page, sort, filter and search all shape the response.
// Prefix namespaces the keys and MaxBodyBytes caps how large a response may
// be before it is served uncached.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from environment variables, falling
// back to defaults tuned for the feedback listing.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "15s")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       getenv("CACHE_PREFIX", "fb:cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
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

// env helpers shared with ratelimit.go
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
