// Package auditlog persists structured, leveled audit events and serves
// them back to admin tooling. Records are append-only: they are created by
// Log and its wrappers, never mutated, and destroyed only by the bulk
// retention cleanup.
package auditlog

import (
	"context"
	"time"
)

// Level classifies record severity. Levels are ordered for readers; the
// store does not enforce ordering beyond exact-match filtering.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Well-known categories. The taxonomy is open-ended: unrecognized
// categories are stored verbatim so it can grow without a code change.
const (
	CategoryDocument  = "document"
	CategorySignature = "signature"
	CategorySync      = "sync"
	CategoryRewrite   = "rewrite"
	CategoryAuth      = "auth"
	CategoryFeature   = "feature"
	CategoryAPI       = "api"
	CategoryGeneral   = "general"
)

// Record is one persisted audit event.
type Record struct {
	ID        int64
	Level     Level
	Category  string
	Event     string
	Message   string
	Context   map[string]any
	UserID    string // empty when no actor could be attributed
	IPAddress string
	URL       string
	CreatedAt time.Time
}

// Filter narrows a Query. Zero-valued fields are omitted from the
// predicate; set fields are ANDed together.
type Filter struct {
	Level    Level
	Category string
	Event    string // case-insensitive substring match
	UserID   string
	After    *time.Time // inclusive lower bound on created_at
	Before   *time.Time // inclusive upper bound on created_at
	Limit    int
	Offset   int
	OrderBy  string
	Order    string
}

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// orderColumns is the whitelist of sortable columns. Anything else falls
// back to created_at, so caller-supplied order-by values can never reach
// the SQL layer verbatim.
var orderColumns = map[string]struct{}{
	"id":         {},
	"level":      {},
	"category":   {},
	"event":      {},
	"created_at": {},
}

// OrderColumn returns the whitelisted sort column for this filter.
func (f Filter) OrderColumn() string {
	if _, ok := orderColumns[f.OrderBy]; ok {
		return f.OrderBy
	}
	return "created_at"
}

// OrderDirection returns "ASC" only for an explicit ASC request; any other
// value means DESC.
func (f Filter) OrderDirection() string {
	if f.Order == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// EffectiveLimit clamps the page size to sane bounds.
func (f Filter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return defaultQueryLimit
	case f.Limit > maxQueryLimit:
		return maxQueryLimit
	default:
		return f.Limit
	}
}

// Store is the persistence port. Append assigns and returns the record ID;
// the store owns created_at. DeleteOlderThan removes records created
// strictly before the cutoff and reports how many went away.
type Store interface {
	Append(ctx context.Context, rec Record) (int64, error)
	Query(ctx context.Context, f Filter) ([]Record, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Observer is notified after a record has been persisted. Observers run
// best-effort: a panic in one never affects the committed write or the
// remaining observers.
type Observer interface {
	Notify(ctx context.Context, rec Record)
}

// DebugSink receives the one-line mirror of each record when verbose
// diagnostics are enabled. Sinks are ephemeral by contract.
type DebugSink interface {
	Write(ctx context.Context, line string)
}
