package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "CACHE_TTL_SECONDS", "RESERVE_ATTEMPTS", "CORS_ORIGINS", "RATE_LIMIT_RPS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 900*time.Second, c.CacheTTL)
	assert.Equal(t, 30*time.Second, c.SearchCacheTTL)
	assert.Equal(t, 2, c.ReserveAttempts)
	assert.Equal(t, 5*time.Second, c.LockTimeout)
	assert.Empty(t, c.CORSOrigins)
	assert.Zero(t, c.RateLimitRPS)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("RESERVE_ATTEMPTS", "0")
	t.Setenv("LOCK_TIMEOUT_SECONDS", "oops")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "12.5")

	c := Load()
	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, 1, c.ReserveAttempts)
	assert.Equal(t, 5*time.Second, c.LockTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, 12.5, c.RateLimitRPS)
}
