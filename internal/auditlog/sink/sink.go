// Package sink provides ephemeral diagnostic sinks for the audit log's
// debug mirror. Sinks are best-effort: a sink failure is never surfaced to
// the caller that produced the record.
package sink

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Slog writes mirror lines to a structured logger at debug level.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates a slog-backed debug sink.
func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{logger: logger}
}

func (s *Slog) Write(ctx context.Context, line string) {
	s.logger.DebugContext(ctx, line)
}

// Redis keeps the most recent mirror lines in a capped list so operators
// can tail diagnostics without touching the durable store.
type Redis struct {
	client *redis.Client
	key    string
	cap    int64
}

// NewRedis creates a redis-backed debug sink. cap bounds the list length;
// values <= 0 fall back to 1000 entries.
func NewRedis(client *redis.Client, key string, cap int64) *Redis {
	if key == "" {
		key = "audit:debug"
	}
	if cap <= 0 {
		cap = 1000
	}
	return &Redis{client: client, key: key, cap: cap}
}

func (r *Redis) Write(ctx context.Context, line string) {
	pipe := r.client.Pipeline()
	pipe.LPush(ctx, r.key, line)
	pipe.LTrim(ctx, r.key, 0, r.cap-1)
	// Diagnostic stream is ephemeral; drop the line on redis errors.
	_, _ = pipe.Exec(ctx)
}
