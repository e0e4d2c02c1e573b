// Package memory provides an in-memory audit store for tests and local
// development. It mirrors the postgres store's observable behavior,
// including filter semantics and the strict cleanup boundary.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"assina/internal/auditlog"
)

// Store is a mutex-guarded append-only slice of records.
type Store struct {
	mu     sync.Mutex
	nextID int64
	recs   []auditlog.Record
}

// New creates an empty in-memory audit store.
func New() *Store {
	return &Store{nextID: 1}
}

// Append assigns the next ID and stores a deep copy of the record.
func (s *Store) Append(_ context.Context, rec auditlog.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Context = copyContext(rec.Context)
	s.recs = append(s.recs, rec)
	return rec.ID, nil
}

// Query filters, orders, and paginates the stored records.
func (s *Store) Query(_ context.Context, f auditlog.Filter) ([]auditlog.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []auditlog.Record
	for _, rec := range s.recs {
		if !matches(rec, f) {
			continue
		}
		rec.Context = copyContext(rec.Context)
		matched = append(matched, rec)
	}

	orderRecords(matched, f.OrderColumn(), f.OrderDirection())

	if f.Offset >= len(matched) {
		return nil, nil
	}
	if f.Offset > 0 {
		matched = matched[f.Offset:]
	}
	if limit := f.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// DeleteOlderThan removes records created strictly before the cutoff.
func (s *Store) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.recs[:0]
	var deleted int64
	for _, rec := range s.recs {
		if rec.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.recs = kept
	return deleted, nil
}

func matches(rec auditlog.Record, f auditlog.Filter) bool {
	if f.Level != "" && rec.Level != f.Level {
		return false
	}
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if f.Event != "" && !strings.Contains(strings.ToLower(rec.Event), strings.ToLower(f.Event)) {
		return false
	}
	if f.UserID != "" && rec.UserID != f.UserID {
		return false
	}
	if f.After != nil && rec.CreatedAt.Before(*f.After) {
		return false
	}
	if f.Before != nil && rec.CreatedAt.After(*f.Before) {
		return false
	}
	return true
}

func orderRecords(recs []auditlog.Record, column, direction string) {
	less := func(a, b auditlog.Record) bool {
		switch column {
		case "id":
			return a.ID < b.ID
		case "level":
			return a.Level < b.Level
		case "category":
			return a.Category < b.Category
		case "event":
			return a.Event < b.Event
		default:
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if direction == "ASC" {
			return less(recs[i], recs[j])
		}
		return less(recs[j], recs[i])
	})
}

func copyContext(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
