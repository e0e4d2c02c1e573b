// Package handler wires the signing and audit endpoints onto the router.
// Handlers stay thin: decode, delegate, translate.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"assina/internal/auditlog"
	"assina/internal/directory"
	"assina/internal/signing"
	dErrors "assina/pkg/errors"
	"assina/pkg/platform/httputil"
	"assina/pkg/requestcontext"
)

// Signer is the signing service surface the handler consumes.
type Signer interface {
	Create(ctx context.Context, title string, signers []signing.SignerInput) (directory.Document, error)
	ViewDocument(ctx context.Context, documentID string) (*signing.View, error)
	Sign(ctx context.Context, documentID string) error
}

// AuditReader is the admin-facing slice of the audit service.
type AuditReader interface {
	Query(ctx context.Context, f auditlog.Filter) ([]auditlog.Record, error)
	Cleanup(ctx context.Context, daysOld int) (int64, error)
}

// Handler wires signing endpoints to their services.
type Handler struct {
	signer Signer
	audit  AuditReader
	logger *slog.Logger
}

// New constructs the handler with its dependencies.
func New(signer Signer, audit AuditReader, logger *slog.Logger) *Handler {
	return &Handler{signer: signer, audit: audit, logger: logger}
}

// Register mounts the document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.HandleCreate)
	r.Get("/documents/{documentID}", h.HandleView)
	r.Post("/documents/{documentID}/sign", h.HandleSign)
}

// RegisterAdmin mounts the audit log admin endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit-logs", h.HandleAuditQuery)
	r.Delete("/admin/audit-logs", h.HandleAuditCleanup)
}

// HandleCreate handles POST /documents.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateDocumentRequest](w, r)
	if !ok {
		return
	}

	doc, err := h.signer.Create(ctx, req.Title, req.SignerInputs())
	if err != nil {
		h.logger.ErrorContext(ctx, "document create failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, fromDocument(doc))
}

// HandleView handles GET /documents/{documentID}.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "documentID")

	view, err := h.signer.ViewDocument(ctx, documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromView(view))
}

// HandleSign handles POST /documents/{documentID}/sign.
func (h *Handler) HandleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "documentID")
	start := time.Now()

	if err := h.signer.Sign(ctx, documentID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document signed",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", documentID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed"})
}

// HandleAuditQuery handles GET /admin/audit-logs.
func (h *Handler) HandleAuditQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recs, err := h.audit.Query(ctx, auditFilterFromQuery(r.URL.Query()))
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": fromRecords(recs)})
}

// HandleAuditCleanup handles DELETE /admin/audit-logs?days_old=N.
func (h *Handler) HandleAuditCleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	daysOld, err := strconv.Atoi(r.URL.Query().Get("days_old"))
	if err != nil || daysOld < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "days_old must be a non-negative integer"))
		return
	}

	deleted, err := h.audit.Cleanup(ctx, daysOld)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audit retention cleanup",
		"request_id", requestcontext.RequestID(ctx),
		"days_old", daysOld,
		"deleted", deleted,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
