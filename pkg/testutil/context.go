package testutil

import (
	"net/http"

	"assina/pkg/requestcontext"
)

// WithActor adds an authenticated actor to the request context. This
// simulates what the auth middleware would do for authenticated requests.
func WithActor(req *http.Request, userID string) *http.Request {
	if userID == "" {
		return req
	}
	ctx := requestcontext.WithActorID(req.Context(), userID)
	return req.WithContext(ctx)
}

// WithClientMetadata adds a client IP and user agent to the request
// context, as the metadata middleware would.
func WithClientMetadata(req *http.Request, ip, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, userAgent)
	return req.WithContext(ctx)
}
