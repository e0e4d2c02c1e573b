// Package directory is the user/document directory: raw identity fields,
// document metadata, and per-document signer rosters. It owns the
// canonical-vs-legacy CPF key precedence so the eligibility rules never
// see storage keys.
package directory

import (
	"context"
	"time"

	"assina/internal/eligibility"
)

// Profile is the raw, storage-level identity record. CPF historically
// lived under two keys; both are carried so reads can apply precedence and
// the consistency check can compare them.
type Profile struct {
	UserID    string
	Name      string
	CPF       string // canonical key
	LegacyCPF string // consulted only when the canonical key is empty
	Passport  string
	DocType   eligibility.DocumentType

	// SignPermission is the explicit signing override. nil means unset.
	SignPermission *bool
}

// Permission maps the stored nullable flag onto the three-state enum.
func (p Profile) Permission() eligibility.SignPermission {
	switch {
	case p.SignPermission == nil:
		return eligibility.PermissionUnset
	case *p.SignPermission:
		return eligibility.PermissionGranted
	default:
		return eligibility.PermissionRevoked
	}
}

// Document is the minimal metadata the signing flow needs.
type Document struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
}

// Stores are interface-driven to keep the domain logic testable and to
// allow swapping in-memory and postgres persistence without rewiring
// business code.

type IdentityStore interface {
	FindProfile(ctx context.Context, userID string) (Profile, error)
	SaveProfile(ctx context.Context, profile Profile) error
}

type DocumentStore interface {
	Save(ctx context.Context, doc Document) error
	FindByID(ctx context.Context, id string) (Document, error)
}

type RosterStore interface {
	Roster(ctx context.Context, documentID string) ([]eligibility.SignerEntry, error)
	AddSigner(ctx context.Context, documentID string, entry eligibility.SignerEntry) error
	MarkSigned(ctx context.Context, documentID, userID string) error
}
