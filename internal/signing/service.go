// Package signing orchestrates the document signing flow: it gates every
// view and sign attempt through the eligibility rules and records every
// outcome in the audit log.
package signing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"assina/internal/directory"
	"assina/internal/eligibility"
	"assina/internal/signing/metrics"
	dErrors "assina/pkg/errors"
	"assina/pkg/platform/sentinel"
	"assina/pkg/requestcontext"
)

// Auditor is the slice of the audit logger this service writes through.
// Audit writes are best-effort; the returned IDs are ignored here.
type Auditor interface {
	LogDocument(ctx context.Context, event, documentID string, contextData map[string]any) int64
	LogSignature(ctx context.Context, event, documentID string, contextData map[string]any) int64
	LogSyncDivergence(ctx context.Context, divergenceType string, contextData map[string]any) int64
	LogBlockedAccess(ctx context.Context, endpoint string, contextData map[string]any) int64
	Error(ctx context.Context, event string, contextData map[string]any, category string) int64
}

// Service wires the directory, the eligibility rules, and the audit log.
type Service struct {
	dir     *directory.Service
	docs    directory.DocumentStore
	roster  directory.RosterStore
	audit   Auditor
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewService constructs the signing service.
func NewService(dir *directory.Service, docs directory.DocumentStore, roster directory.RosterStore, audit Auditor, m *metrics.Metrics) (*Service, error) {
	if dir == nil {
		return nil, fmt.Errorf("directory service is required")
	}
	if docs == nil || roster == nil {
		return nil, fmt.Errorf("document and roster stores are required")
	}
	if audit == nil {
		return nil, fmt.Errorf("auditor is required")
	}
	return &Service{
		dir:     dir,
		docs:    docs,
		roster:  roster,
		audit:   audit,
		metrics: m,
		tracer:  otel.Tracer("assina/signing"),
	}, nil
}

// SignerInput names one expected signer when creating a document.
type SignerInput struct {
	UserID string
	Name   string
	Role   string
}

// View is everything the document page needs: the viewer's eligibility and
// the partitioned roster.
type View struct {
	Document directory.Document
	Result   eligibility.Result
	Self     *eligibility.SignerEntry
	Others   []eligibility.SignerEntry
}

// Create registers a document with its signer roster and records the
// document_created event.
func (s *Service) Create(ctx context.Context, title string, signers []SignerInput) (directory.Document, error) {
	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		return directory.Document{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if title == "" {
		return directory.Document{}, dErrors.New(dErrors.CodeBadRequest, "title is required")
	}

	doc := directory.Document{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   actorID,
		CreatedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return directory.Document{}, fmt.Errorf("save document: %w", err)
	}

	for _, signer := range signers {
		entry := eligibility.SignerEntry{UserID: signer.UserID, Name: signer.Name, Role: signer.Role}
		if err := s.roster.AddSigner(ctx, doc.ID, entry); err != nil {
			return directory.Document{}, fmt.Errorf("add signer %s: %w", signer.UserID, err)
		}
	}

	s.audit.LogDocument(ctx, "document_created", doc.ID, map[string]any{
		"title":   doc.Title,
		"signers": len(signers),
	})
	return doc, nil
}

// ViewDocument resolves the viewer's eligibility and partitions the signer
// roster. A CPF key divergence discovered while reading the identity is
// reported to the audit log but never blocks the view.
func (s *Service) ViewDocument(ctx context.Context, documentID string) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "signing.ViewDocument",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer span.End()

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, fmt.Errorf("load document: %w", err)
	}

	result, err := s.resolveViewer(ctx, actorID)
	if err != nil {
		return nil, err
	}

	entries, err := s.roster.Roster(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	self, others := eligibility.PartitionRoster(entries, actorID)

	return &View{Document: doc, Result: result, Self: self, Others: others}, nil
}

// Sign executes a signature attempt. Eligibility is re-checked here,
// server-side, regardless of what the UI showed: the gate is
// security-relevant, not cosmetic. Every outcome lands in the audit log.
func (s *Service) Sign(ctx context.Context, documentID string) error {
	ctx, span := s.tracer.Start(ctx, "signing.Sign",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveSignLatency(time.Since(start)) }()

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	if _, err := s.docs.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return fmt.Errorf("load document: %w", err)
	}

	result, err := s.resolveViewer(ctx, actorID)
	if err != nil {
		return err
	}
	if !result.Eligible() {
		s.metrics.IncrementSignAttempt("blocked")
		s.audit.LogBlockedAccess(ctx, "documents/sign", map[string]any{
			"document_id":    documentID,
			"classification": string(result.Classification),
			"reason":         result.BlockReason,
		})
		return dErrors.New(dErrors.CodeForbidden, result.BlockReason)
	}

	if err := s.roster.MarkSigned(ctx, documentID, actorID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementSignAttempt("blocked")
			s.audit.LogBlockedAccess(ctx, "documents/sign", map[string]any{
				"document_id": documentID,
				"reason":      "signer not on roster",
			})
			return dErrors.New(dErrors.CodeForbidden, "you are not on this document's signer roster")
		}
		s.metrics.IncrementSignAttempt("failed")
		s.audit.Error(ctx, "signature_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		}, "signature")
		return fmt.Errorf("mark signed: %w", err)
	}

	s.metrics.IncrementSignAttempt("signed")
	s.audit.LogSignature(ctx, "signature_completed", documentID, map[string]any{
		"signer_identity": result.MaskedIdentity,
	})
	return nil
}

// resolveViewer loads the actor's identity, classifies it, and reports any
// CPF key divergence noticed along the way.
func (s *Service) resolveViewer(ctx context.Context, actorID string) (eligibility.Result, error) {
	identity, err := s.dir.Identity(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return eligibility.Result{}, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return eligibility.Result{}, fmt.Errorf("load identity: %w", err)
	}

	if div, err := s.dir.VerifyCPFConsistency(ctx, actorID); err == nil && div != nil {
		s.audit.LogSyncDivergence(ctx, "cpf_meta", map[string]any{
			"user_id":   div.UserID,
			"canonical": eligibility.MaskCPF(div.Canonical),
			"legacy":    eligibility.MaskCPF(div.Legacy),
		})
	}

	result := eligibility.Resolve(identity)
	s.metrics.IncrementOutcome(string(result.Classification))
	return result, nil
}
