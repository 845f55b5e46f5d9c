package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CacheTTL        time.Duration
	SearchCacheTTL  time.Duration
	ReserveAttempts int
	LockTimeout     time.Duration
	ShutdownTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	SeedFile    string
	SeedWorkers int
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Real environment variables win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/booking?charset=utf8mb4"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		CacheTTL:        seconds("CACHE_TTL_SECONDS", 900),
		SearchCacheTTL:  seconds("SEARCH_CACHE_TTL_SECONDS", 30),
		ReserveAttempts: atoi("RESERVE_ATTEMPTS", 2),
		LockTimeout:     seconds("LOCK_TIMEOUT_SECONDS", 5),
		ShutdownTimeout: seconds("SHUTDOWN_TIMEOUT_SECONDS", 10),

		RateLimitRPS:   atof("RATE_LIMIT_RPS", 0),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 20),
		CORSOrigins:    list("CORS_ORIGINS"),

		SeedFile:    env("SEED_FILE", "fixtures/hotels.json"),
		SeedWorkers: atoi("SEED_WORKERS", 4),
	}
	if c.ReserveAttempts < 1 {
		log.Warn().Int("attempts", c.ReserveAttempts).Msg("RESERVE_ATTEMPTS below 1, using 1")
		c.ReserveAttempts = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}

func seconds(k string, def int) time.Duration {
	return time.Duration(atoi(k, def)) * time.Second
}

// list splits a comma separated variable, dropping blanks.
func list(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
