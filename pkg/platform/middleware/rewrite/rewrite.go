// Package rewrite redirects legacy document paths to their current form
// and records the hit so stale integrations can be tracked down.
package rewrite

import (
	"context"
	"net/http"
	"strings"
)

// Auditor is the slice of the audit logger the middleware needs.
type Auditor interface {
	LogRewrite(ctx context.Context, event string, contextData map[string]any) int64
}

const legacyPrefix = "/docs/"

// LegacyDocs issues a permanent redirect from /docs/{id} to
// /documents/{id} and logs a rewrite event per hit.
func LegacyDocs(audit Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, legacyPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			target := "/documents/" + strings.TrimPrefix(r.URL.Path, legacyPrefix)
			audit.LogRewrite(r.Context(), "legacy_path_redirected", map[string]any{
				"from": r.URL.Path,
				"to":   target,
			})
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}
