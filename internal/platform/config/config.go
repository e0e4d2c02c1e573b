package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "assina/pkg/platform/strings"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr        string
	PostgresDSN string

	// Redis backs the ephemeral audit debug stream. Empty disables it.
	RedisURL      string
	RedisDebugKey string
	RedisDebugCap int64

	// Kafka forwards persisted audit records. Empty brokers disable it.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string

	// AuditDebug mirrors every audit record to the diagnostic sinks.
	AuditDebug bool
	// AuditPreferExplicitActor flips the audit attribution precedence so
	// a caller-supplied context user_id wins over the ambient actor.
	AuditPreferExplicitActor bool

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("ASSINA_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("ASSINA_POSTGRES_DSN"),
		RedisURL:        os.Getenv("ASSINA_REDIS_URL"),
		RedisDebugKey:   envOr("ASSINA_REDIS_DEBUG_KEY", "audit:debug"),
		RedisDebugCap:   envInt64("ASSINA_REDIS_DEBUG_CAP", 1000),
		KafkaTopic:      envOr("ASSINA_KAFKA_TOPIC", "assina.audit"),
		JWTSigningKey:   os.Getenv("ASSINA_JWT_SIGNING_KEY"),
		AuditDebug:      os.Getenv("ASSINA_AUDIT_DEBUG") == "true",
		ShutdownTimeout: 10 * time.Second,
	}
	cfg.AuditPreferExplicitActor = os.Getenv("ASSINA_AUDIT_PREFER_EXPLICIT_ACTOR") == "true"

	if brokers := os.Getenv("ASSINA_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = pstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}

	if cfg.JWTSigningKey == "" {
		// Development default - must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
