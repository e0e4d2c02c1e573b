package handler

import (
	"net/url"
	"strconv"
	"time"

	"assina/internal/auditlog"
	"assina/internal/signing"
)

// CreateDocumentRequest is the POST /documents body.
type CreateDocumentRequest struct {
	Title   string          `json:"title"`
	Signers []SignerRequest `json:"signers"`
}

// SignerRequest names one expected signer.
type SignerRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// SignerInputs converts the request signers to their domain form.
func (r CreateDocumentRequest) SignerInputs() []signing.SignerInput {
	out := make([]signing.SignerInput, 0, len(r.Signers))
	for _, s := range r.Signers {
		out = append(out, signing.SignerInput{UserID: s.UserID, Name: s.Name, Role: s.Role})
	}
	return out
}

// auditFilterFromQuery maps admin query parameters to an audit log filter.
// Unknown orderby values are handled downstream by the whitelist; bad
// dates and numbers are simply ignored rather than rejected.
func auditFilterFromQuery(q url.Values) auditlog.Filter {
	f := auditlog.Filter{
		Level:    auditlog.Level(q.Get("level")),
		Category: q.Get("category"),
		Event:    q.Get("event"),
		UserID:   q.Get("user_id"),
		OrderBy:  q.Get("orderby"),
		Order:    q.Get("order"),
	}
	if t, err := time.Parse(time.RFC3339, q.Get("date_after")); err == nil {
		f.After = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("date_before")); err == nil {
		f.Before = &t
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = n
	}
	return f
}
