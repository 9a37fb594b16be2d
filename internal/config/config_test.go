package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, EventsNone, cfg.EventsDriver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "logs/reservation.log", cfg.EventLogPath)
	assert.Equal(t, time.Hour, cfg.AccessTTL())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", " Postgres ")
	t.Setenv("DATABASE_URL", "postgres://app@localhost/spots")
	t.Setenv("EVENTS_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BUSINESS_TIMEZONE", "Europe/Paris")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecret:        "s3cret",
		StorageDriver:    StorageMemory,
		EventsDriver:     EventsNone,
		AccessTTLMin:     60,
		BcryptCost:       10,
		BusinessTimezone: "UTC",
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"empty secret":        func(c *Config) { c.JWTSecret = " " },
		"unknown storage":     func(c *Config) { c.StorageDriver = "sqlite" },
		"postgres without url": func(c *Config) { c.StorageDriver = StoragePostgres },
		"unknown events":      func(c *Config) { c.EventsDriver = "nats" },
		"kafka without brokers": func(c *Config) {
			c.EventsDriver = EventsKafka
			c.KafkaBrokers = nil
		},
		"ttl":      func(c *Config) { c.AccessTTLMin = 0 },
		"bcrypt":   func(c *Config) { c.BcryptCost = 2 },
		"timezone": func(c *Config) { c.BusinessTimezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c, err := LoadRateLimitConfig()
	require.NoError(t, err)
	assert.True(t, c.Enabled)
	assert.Equal(t, 5, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 2*time.Second, c.RefillInterval)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	c, err := LoadCacheConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, 30*time.Second, c.TTL)
}

func TestRedisConfig_Address(t *testing.T) {
	assert.Equal(t, "localhost:6379", RedisConfig{Addr: "localhost:6379"}.Address())
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380", Addr: "x:1"}.Address())
}
