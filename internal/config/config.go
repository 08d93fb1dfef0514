// Package config reads the relay's settings from the environment. Values
// from a local .env file are picked up by godotenv/autoload in main.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MovePolicy selects how game-move snapshots from clients are treated.
type MovePolicy string

const (
	// PolicyTrusted writes client snapshots verbatim and broadcasts full states.
	PolicyTrusted MovePolicy = "trusted"
	// PolicyAuthoritative rejects snapshots; only engine-checked moves change state.
	PolicyAuthoritative MovePolicy = "authoritative"
)

type Config struct {
	Port     string
	LogLevel logrus.Level

	// Store is "postgres" or "memory".
	Store   string
	Migrate bool

	PGUser     string
	PGPassword string
	PGHost     string
	PGPort     string
	PGDatabase string

	RedisAddr    string
	RedisDB      int
	RoomCacheTTL time.Duration

	MovePolicy        MovePolicy
	MemoryRevealDelay time.Duration
	RollSettleDelay   time.Duration
	ActorIdleTimeout  time.Duration
	TokenExpire       time.Duration
}

// Load parses the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	var err error
	c := &Config{
		Port:       getEnv("PORT", "8080"),
		Store:      strings.ToLower(getEnv("STORE", "postgres")),
		PGUser:     getEnv("POSTGRES_USER", "postgres"),
		PGPassword: os.Getenv("POSTGRES_PASSWORD"),
		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGDatabase: getEnv("PG_DATABASE", "gameroom"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		MovePolicy: MovePolicy(strings.ToLower(getEnv("RELAY_MOVE_POLICY", string(PolicyTrusted)))),
	}

	if c.LogLevel, err = logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.Migrate, err = strconv.ParseBool(getEnv("MIGRATE", "true")); err != nil {
		return nil, fmt.Errorf("MIGRATE: %w", err)
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"ROOM_CACHE_TTL", 30 * time.Second, &c.RoomCacheTTL},
		{"MEMORY_REVEAL_DELAY", 1500 * time.Millisecond, &c.MemoryRevealDelay},
		{"ROLL_SETTLE_DELAY", 1500 * time.Millisecond, &c.RollSettleDelay},
		{"ACTOR_IDLE_TIMEOUT", 2 * time.Minute, &c.ActorIdleTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getEnvDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	// "never" or "0" keeps tokens valid indefinitely.
	switch exp := os.Getenv("TOKEN_EXPIRE_TIME"); exp {
	case "", "never", "0":
	default:
		if c.TokenExpire, err = time.ParseDuration(exp); err != nil {
			return nil, fmt.Errorf("TOKEN_EXPIRE_TIME: %w", err)
		}
	}

	switch c.Store {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("STORE must be postgres or memory, got %q", c.Store)
	}
	switch c.MovePolicy {
	case PolicyTrusted, PolicyAuthoritative:
	default:
		return nil, fmt.Errorf("RELAY_MOVE_POLICY must be trusted or authoritative, got %q", c.MovePolicy)
	}
	return c, nil
}

// PostgresURL builds the pgx connection string.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
