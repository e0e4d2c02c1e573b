package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"assina/internal/auditlog/metrics"
	"assina/pkg/requestcontext"
)

// Service is the write and read front of the audit log. Writes are
// best-effort by contract: a failed insert returns the zero ID instead of
// an error so audit logging can never abort the business operation it is
// documenting. Queries propagate errors - a caller explicitly reading the
// log needs to know when the read itself is broken.
type Service struct {
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	observers []Observer
	sinks     []DebugSink

	// debug mirrors a one-line summary of every record to the sinks.
	debug bool
	// preferExplicitActor flips the user attribution precedence so a
	// caller-supplied context user_id wins over the ambient actor. The
	// default (false) preserves ambient-actor-wins.
	preferExplicitActor bool
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithObservers registers post-persist observers (alerting, forwarders).
func WithObservers(obs ...Observer) Option {
	return func(s *Service) { s.observers = append(s.observers, obs...) }
}

// WithDebugSinks registers diagnostic sinks and enables the debug mirror.
func WithDebugSinks(sinks ...DebugSink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
		s.debug = true
	}
}

// WithPreferExplicitActor makes a caller-supplied context user_id win over
// the ambient authenticated actor.
func WithPreferExplicitActor() Option {
	return func(s *Service) { s.preferExplicitActor = true }
}

// NewService constructs the audit log service.
func NewService(store Store, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Log persists one audit record and returns its ID, or 0 on write failure.
//
// The caller's context map is never mutated. A "message" key is extracted
// as the human-readable summary (falling back to the event name) and a
// UTC "timestamp" key is injected unconditionally, overwriting any
// caller-supplied value. User attribution follows the configured
// precedence between the ambient actor and context["user_id"].
func (s *Service) Log(ctx context.Context, level Level, event string, contextData map[string]any, category string) int64 {
	if category == "" {
		category = CategoryGeneral
	}

	now := requestcontext.Now(ctx).UTC()

	blob := make(map[string]any, len(contextData)+1)
	for k, v := range contextData {
		blob[k] = v
	}

	message := event
	if raw, ok := blob["message"]; ok {
		if str, ok := raw.(string); ok {
			message = str
		} else {
			message = fmt.Sprint(raw)
		}
		delete(blob, "message")
	}

	blob["timestamp"] = now.Format(time.RFC3339)

	rec := Record{
		Level:     level,
		Category:  category,
		Event:     event,
		Message:   message,
		Context:   blob,
		UserID:    s.resolveUserID(ctx, contextData),
		IPAddress: requestcontext.ClientIP(ctx),
		URL:       requestcontext.RequestURL(ctx),
		CreatedAt: now,
	}

	id, err := s.store.Append(ctx, rec)
	if err != nil {
		s.metrics.IncrementWriteFailure(string(level), category)
		s.logger.ErrorContext(ctx, "audit write failed",
			"event", event,
			"category", category,
			"error", err,
		)
		return 0
	}
	rec.ID = id
	s.metrics.IncrementWrite(string(level), category)

	if s.debug {
		s.mirror(ctx, rec)
	}
	s.notify(ctx, rec)

	return id
}

// resolveUserID applies the actor attribution precedence.
func (s *Service) resolveUserID(ctx context.Context, contextData map[string]any) string {
	ambient := requestcontext.ActorID(ctx)
	explicit := ""
	if raw, ok := contextData["user_id"]; ok {
		if str, ok := raw.(string); ok {
			explicit = str
		} else {
			explicit = fmt.Sprint(raw)
		}
	}

	if s.preferExplicitActor {
		if explicit != "" {
			return explicit
		}
		return ambient
	}
	if ambient != "" {
		return ambient
	}
	return explicit
}

// mirror writes the one-line diagnostic form of a record to every sink.
func (s *Service) mirror(ctx context.Context, rec Record) {
	blob, err := json.Marshal(rec.Context)
	if err != nil {
		blob = []byte("{}")
	}
	line := fmt.Sprintf("[%s] [%s] %s: %s %s",
		strings.ToUpper(string(rec.Level)), rec.Category, rec.Event, rec.Message, blob)
	for _, sink := range s.sinks {
		sink.Write(ctx, line)
	}
}

// notify dispatches the persisted record to every observer. Each observer
// runs under its own recover so a panic cannot affect the committed write
// or the remaining observers.
func (s *Service) notify(ctx context.Context, rec Record) {
	for _, obs := range s.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.WarnContext(ctx, "audit observer panicked",
						"event", rec.Event,
						"panic", r,
					)
				}
			}()
			obs.Notify(ctx, rec)
		}()
	}
}

// Query returns records matching the filter, most specific ordering rules
// applied by the store. The context blob comes back deserialized.
func (s *Service) Query(ctx context.Context, f Filter) ([]Record, error) {
	return s.store.Query(ctx, f)
}

// Cleanup deletes records strictly older than daysOld days and returns the
// number removed. Destructive and caller-triggered; scheduling is an
// external concern.
func (s *Service) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	if daysOld < 0 {
		return 0, fmt.Errorf("cleanup: days_old must not be negative, got %d", daysOld)
	}
	cutoff := requestcontext.Now(ctx).UTC().AddDate(0, 0, -daysOld)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.AddCleanupDeleted(deleted)
	return deleted, nil
}
