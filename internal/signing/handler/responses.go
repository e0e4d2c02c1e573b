package handler

import (
	"time"

	"assina/internal/auditlog"
	"assina/internal/directory"
	"assina/internal/eligibility"
	"assina/internal/signing"
)

// DocumentResponse describes a created document.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EligibilityResponse is the viewer's resolved signing state.
type EligibilityResponse struct {
	Classification string `json:"classification"`
	CanSign        bool   `json:"can_sign"`
	BlockReason    string `json:"block_reason,omitempty"`
	MaskedIdentity string `json:"masked_identity"`
}

// SignerResponse is one roster entry as rendered.
type SignerResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Signed bool   `json:"signed"`
}

// ViewResponse is the GET /documents/{id} body.
type ViewResponse struct {
	Document    DocumentResponse    `json:"document"`
	Eligibility EligibilityResponse `json:"eligibility"`
	Self        *SignerResponse     `json:"self,omitempty"`
	Others      []SignerResponse    `json:"others"`
}

// AuditRecordResponse is one audit record as served to admin tooling.
type AuditRecordResponse struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Event     string         `json:"event"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	URL       string         `json:"url,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func fromView(v *signing.View) ViewResponse {
	resp := ViewResponse{
		Document: fromDocument(v.Document),
		Eligibility: EligibilityResponse{
			Classification: string(v.Result.Classification),
			CanSign:        v.Result.Eligible(),
			BlockReason:    v.Result.BlockReason,
			MaskedIdentity: v.Result.MaskedIdentity,
		},
		Others: make([]SignerResponse, 0, len(v.Others)),
	}
	if v.Self != nil {
		self := fromSigner(*v.Self)
		resp.Self = &self
	}
	for _, other := range v.Others {
		resp.Others = append(resp.Others, fromSigner(other))
	}
	return resp
}

func fromDocument(doc directory.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		OwnerID:   doc.OwnerID,
		CreatedAt: doc.CreatedAt,
	}
}

func fromSigner(e eligibility.SignerEntry) SignerResponse {
	return SignerResponse{
		UserID: e.UserID,
		Name:   e.DisplayName(),
		Role:   e.Role,
		Signed: e.Signed,
	}
}

func fromRecords(recs []auditlog.Record) []AuditRecordResponse {
	out := make([]AuditRecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, AuditRecordResponse{
			ID:        rec.ID,
			Level:     string(rec.Level),
			Category:  rec.Category,
			Event:     rec.Event,
			Message:   rec.Message,
			Context:   rec.Context,
			UserID:    rec.UserID,
			IPAddress: rec.IPAddress,
			URL:       rec.URL,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out
}
