package auditlog

import "context"

// Level wrappers. Thin aliases over Log - they fix the level and forward
// everything else.

func (s *Service) Debug(ctx context.Context, event string, contextData map[string]any, category string) int64 {
	return s.Log(ctx, LevelDebug, event, contextData, category)
}

func (s *Service) Info(ctx context.Context, event string, contextData map[string]any, category string) int64 {
	return s.Log(ctx, LevelInfo, event, contextData, category)
}

func (s *Service) Warning(ctx context.Context, event string, contextData map[string]any, category string) int64 {
	return s.Log(ctx, LevelWarning, event, contextData, category)
}

func (s *Service) Error(ctx context.Context, event string, contextData map[string]any, category string) int64 {
	return s.Log(ctx, LevelError, event, contextData, category)
}

func (s *Service) Critical(ctx context.Context, event string, contextData map[string]any, category string) int64 {
	return s.Log(ctx, LevelCritical, event, contextData, category)
}

// Domain wrappers. Each injects one or two fixed context keys, fixes the
// category, and delegates. Divergences and blocked access go through
// Warning since they are anomalies worth flagging above plain info.

// LogDocument records a document lifecycle event (created, updated, voided).
func (s *Service) LogDocument(ctx context.Context, event, documentID string, contextData map[string]any) int64 {
	return s.Info(ctx, event, withKey(contextData, "document_id", documentID), CategoryDocument)
}

// LogSignature records a signature lifecycle event.
func (s *Service) LogSignature(ctx context.Context, event, documentID string, contextData map[string]any) int64 {
	return s.Info(ctx, event, withKey(contextData, "document_id", documentID), CategorySignature)
}

// LogSyncDivergence records a consistency-check disagreement between two
// data sources. divergenceType names what diverged, e.g. "cpf_meta".
func (s *Service) LogSyncDivergence(ctx context.Context, divergenceType string, contextData map[string]any) int64 {
	return s.Warning(ctx, "sync_divergence_"+divergenceType, withKey(contextData, "divergence_type", divergenceType), CategorySync)
}

// LogRewrite records a legacy-path rewrite.
func (s *Service) LogRewrite(ctx context.Context, event string, contextData map[string]any) int64 {
	return s.Info(ctx, event, contextData, CategoryRewrite)
}

// LogBlockedAccess records a rejected attempt against a gated endpoint.
func (s *Service) LogBlockedAccess(ctx context.Context, endpoint string, contextData map[string]any) int64 {
	return s.Warning(ctx, "endpoint_blocked", withKey(contextData, "endpoint", endpoint), CategoryAuth)
}

// withKey copies the context map and sets one fixed key. The caller's map
// is never mutated.
func withKey(contextData map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(contextData)+1)
	for k, v := range contextData {
		out[k] = v
	}
	out[key] = value
	return out
}
