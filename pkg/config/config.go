// Package config loads and validates service configuration.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Session  SessionConfig
	Progress ProgressConfig
	Metadata MetadataConfig
	Stream   StreamConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// EvictionPolicy selects what happens when a new device hits the plan's
// device limit. Exactly one policy applies per deployment.
type EvictionPolicy string

const (
	// EvictionBlock denies admission and returns the active sessions so the
	// user can free a slot explicitly.
	EvictionBlock EvictionPolicy = "block"
	// EvictionOldest silently revokes the least-recently-active session.
	EvictionOldest EvictionPolicy = "evict-oldest"
)

type SessionConfig struct {
	EvictionPolicy    EvictionPolicy
	HeartbeatInterval time.Duration
	StaleAfter        time.Duration
	PruneInterval     time.Duration
}

type ProgressConfig struct {
	MovieThreshold   time.Duration
	EpisodeThreshold time.Duration
}

type MetadataConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

type StreamConfig struct {
	ManifestBaseURL string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-this-secret"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 15*time.Minute),
		},
		Session: SessionConfig{
			EvictionPolicy:    evictionPolicy(getEnv("SESSION_EVICTION_POLICY", string(EvictionBlock))),
			HeartbeatInterval: getDurationEnv("SESSION_HEARTBEAT_INTERVAL", 5*time.Minute),
			StaleAfter:        getDurationEnv("SESSION_STALE_AFTER", 30*24*time.Hour),
			PruneInterval:     getDurationEnv("SESSION_PRUNE_INTERVAL", time.Hour),
		},
		Progress: ProgressConfig{
			MovieThreshold:   getDurationEnv("PROGRESS_MOVIE_THRESHOLD", 120*time.Second),
			EpisodeThreshold: getDurationEnv("PROGRESS_EPISODE_THRESHOLD", 90*time.Second),
		},
		Metadata: MetadataConfig{
			BaseURL:   getEnv("METADATA_BASE_URL", "https://api.themoviedb.org/3"),
			APIKey:    getEnv("METADATA_API_KEY", ""),
			Timeout:   getDurationEnv("METADATA_TIMEOUT", 10*time.Second),
			CacheTTL:  getDurationEnv("METADATA_CACHE_TTL", 6*time.Hour),
			CacheSize: getIntEnv("METADATA_CACHE_SIZE", 512),
		},
		Stream: StreamConfig{
			ManifestBaseURL: getEnv("STREAM_MANIFEST_BASE_URL", "https://stream.local/hls"),
		},
	}
}

func evictionPolicy(s string) EvictionPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(EvictionOldest)) {
		return EvictionOldest
	}
	return EvictionBlock
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
