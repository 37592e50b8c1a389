package config

// Redis backs the two cross-instance concerns of the board: the token-bucket
// rate limiter guarding the submit/vote/auth routes and the response cache
// in front of the public listing.  Both are conveniences rather than
// requirements, so when no server is reachable at startup the constructor
// returns nil and the middleware layers switch themselves off.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from the environment:
//
//   REDIS_HOST / REDIS_PORT – server location; together they override REDIS_ADDR
//   REDIS_ADDR – host:port shorthand
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number, default 0
//   REDIS_TLS – "true" or "1" enables TLS
//
// The connection is verified with a short ping; nil is returned on failure.
func NewRedisClient() *redis.Client {
    addr := os.Getenv("REDIS_ADDR")
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    dbNum := 0
    if s := os.Getenv("REDIS_DB"); s != "" {
        if n, err := strconv.Atoi(s); err == nil {
            dbNum = n
        }
    }
    var tlsConf *tls.Config
    if v := os.Getenv("REDIS_TLS"); v == "1" || strings.EqualFold(v, "true") {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }

    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
