// Package postgres persists audit records in PostgreSQL. The store is pure
// I/O - attribution, timestamp injection, and failure policy belong to the
// auditlog service.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"assina/internal/auditlog"
)

// Store implements auditlog.Store on database/sql. The context blob is kept
// as an opaque JSONB value at rest and deserialized on the way out.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one record and returns the assigned ID. created_at is set
// by the database at insert time.
func (s *Store) Append(ctx context.Context, rec auditlog.Record) (int64, error) {
	blob, err := json.Marshal(rec.Context)
	if err != nil {
		return 0, fmt.Errorf("marshal audit context: %w", err)
	}

	var userID sql.NullString
	if rec.UserID != "" {
		userID = sql.NullString{String: rec.UserID, Valid: true}
	}

	query := `
		INSERT INTO audit_logs (level, category, event, message, context, user_id, ip_address, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`
	var id int64
	err = s.db.QueryRowContext(ctx, query,
		string(rec.Level),
		rec.Category,
		rec.Event,
		rec.Message,
		blob,
		userID,
		rec.IPAddress,
		rec.URL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert audit record: %w", err)
	}
	return id, nil
}

// Query returns records matching the filter. Absent filter fields are
// omitted from the predicate entirely; the order column has already been
// whitelisted by Filter.OrderColumn, so no caller value reaches the SQL.
func (s *Store) Query(ctx context.Context, f auditlog.Filter) ([]auditlog.Record, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Level != "" {
		conds = append(conds, "level = "+arg(string(f.Level)))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.Event != "" {
		conds = append(conds, "event ILIKE "+arg("%"+escapeLike(f.Event)+"%"))
	}
	if f.UserID != "" {
		conds = append(conds, "user_id = "+arg(f.UserID))
	}
	if f.After != nil {
		conds = append(conds, "created_at >= "+arg(*f.After))
	}
	if f.Before != nil {
		conds = append(conds, "created_at <= "+arg(*f.Before))
	}

	query := `SELECT id, level, category, event, message, context, user_id, ip_address, url, created_at FROM audit_logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s", f.OrderColumn(), f.OrderDirection())
	query += " LIMIT " + arg(f.EffectiveLimit())
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteOlderThan bulk-deletes records created strictly before the cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete audit records: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted audit records: %w", err)
	}
	return count, nil
}

func scanRecords(rows *sql.Rows) ([]auditlog.Record, error) {
	var recs []auditlog.Record

	for rows.Next() {
		var (
			rec    auditlog.Record
			level  string
			blob   []byte
			userID sql.NullString
		)
		err := rows.Scan(
			&rec.ID,
			&level,
			&rec.Category,
			&rec.Event,
			&rec.Message,
			&blob,
			&userID,
			&rec.IPAddress,
			&rec.URL,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		rec.Level = auditlog.Level(level)
		if userID.Valid {
			rec.UserID = userID.String
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &rec.Context); err != nil {
				return nil, fmt.Errorf("unmarshal audit context: %w", err)
			}
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return recs, nil
}

// escapeLike neutralizes LIKE wildcards in user-supplied substrings.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
