package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"assina/internal/eligibility"
	"assina/pkg/platform/sentinel"
)

// PostgresStore persists directory data in PostgreSQL. Pure I/O; key
// precedence and consistency rules live in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed directory store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindProfile(ctx context.Context, userID string) (Profile, error) {
	query := `
		SELECT user_id, name, cpf, cpf_legacy, passport, doc_type, can_sign_documents
		FROM identity_profiles
		WHERE user_id = $1
	`
	var (
		profile Profile
		docType string
		perm    sql.NullBool
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.CPF,
		&profile.LegacyCPF,
		&profile.Passport,
		&docType,
		&perm,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, sentinel.ErrNotFound
		}
		return Profile{}, fmt.Errorf("find profile: %w", err)
	}

	profile.DocType = eligibility.DocumentType(docType)
	if perm.Valid {
		value := perm.Bool
		profile.SignPermission = &value
	}
	return profile, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, profile Profile) error {
	query := `
		INSERT INTO identity_profiles (user_id, name, cpf, cpf_legacy, passport, doc_type, can_sign_documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			cpf = EXCLUDED.cpf,
			cpf_legacy = EXCLUDED.cpf_legacy,
			passport = EXCLUDED.passport,
			doc_type = EXCLUDED.doc_type,
			can_sign_documents = EXCLUDED.can_sign_documents
	`
	var perm sql.NullBool
	if profile.SignPermission != nil {
		perm = sql.NullBool{Bool: *profile.SignPermission, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Name,
		profile.CPF,
		profile.LegacyCPF,
		profile.Passport,
		string(profile.DocType),
		perm,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	query := `
		INSERT INTO documents (id, title, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, doc.ID, doc.Title, doc.OwnerID, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT id, title, owner_id, created_at FROM documents WHERE id = $1`
	var doc Document
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &doc.Title, &doc.OwnerID, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Roster(ctx context.Context, documentID string) ([]eligibility.SignerEntry, error) {
	query := `
		SELECT user_id, name, role, signed
		FROM document_signers
		WHERE document_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var entries []eligibility.SignerEntry
	for rows.Next() {
		var entry eligibility.SignerEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.Role, &entry.Signed); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) AddSigner(ctx context.Context, documentID string, entry eligibility.SignerEntry) error {
	query := `
		INSERT INTO document_signers (document_id, user_id, name, role, signed, position)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE((SELECT MAX(position) + 1 FROM document_signers WHERE document_id = $1), 0))
	`
	_, err := s.db.ExecContext(ctx, query, documentID, entry.UserID, entry.Name, entry.Role, entry.Signed)
	if err != nil {
		return fmt.Errorf("add signer: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkSigned(ctx context.Context, documentID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE document_signers SET signed = TRUE WHERE document_id = $1 AND user_id = $2`,
		documentID, userID,
	)
	if err != nil {
		return fmt.Errorf("mark signed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark signed rows: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
