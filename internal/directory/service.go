package directory

import (
	"context"
	"fmt"

	"assina/internal/eligibility"
)

// Service assembles resolver-ready identities from raw profiles and runs
// the CPF consistency check between the two historical storage keys.
type Service struct {
	identities IdentityStore
}

// NewService constructs the directory service.
func NewService(identities IdentityStore) (*Service, error) {
	if identities == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	return &Service{identities: identities}, nil
}

// Identity loads a profile and applies the CPF key precedence once, at the
// boundary: the canonical key always wins, the legacy key is consulted
// only when the canonical key is empty.
func (s *Service) Identity(ctx context.Context, userID string) (eligibility.Identity, error) {
	profile, err := s.identities.FindProfile(ctx, userID)
	if err != nil {
		return eligibility.Identity{}, fmt.Errorf("load profile %s: %w", userID, err)
	}

	cpf := profile.CPF
	if cpf == "" {
		cpf = profile.LegacyCPF
	}

	return eligibility.Identity{
		UserID:     profile.UserID,
		CPF:        cpf,
		Passport:   profile.Passport,
		DocType:    profile.DocType,
		Permission: profile.Permission(),
	}, nil
}

// Divergence describes a disagreement between the canonical and legacy CPF
// values for one user. Both values are reported normalized.
type Divergence struct {
	UserID    string
	Canonical string
	Legacy    string
}

// VerifyCPFConsistency compares the two CPF storage keys. A divergence is
// reported only when both keys hold a value and they normalize to
// different digit strings; an empty legacy key is the expected steady
// state, not a divergence.
func (s *Service) VerifyCPFConsistency(ctx context.Context, userID string) (*Divergence, error) {
	profile, err := s.identities.FindProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	canonical := eligibility.NormalizeCPF(profile.CPF)
	legacy := eligibility.NormalizeCPF(profile.LegacyCPF)
	if canonical == "" || legacy == "" || canonical == legacy {
		return nil, nil
	}

	return &Divergence{
		UserID:    userID,
		Canonical: canonical,
		Legacy:    legacy,
	}, nil
}
