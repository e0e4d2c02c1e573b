package auditlog_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"assina/internal/auditlog"
	"assina/internal/auditlog/store/memory"
	"assina/pkg/requestcontext"
)

// failingStore simulates a broken backend for the write-failure contract.
type failingStore struct{}

func (failingStore) Append(context.Context, auditlog.Record) (int64, error) {
	return 0, fmt.Errorf("connection refused")
}

func (failingStore) Query(context.Context, auditlog.Filter) ([]auditlog.Record, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, fmt.Errorf("connection refused")
}

// recordingObserver captures notifications; panicky blows up on purpose.
type recordingObserver struct {
	records []auditlog.Record
}

func (o *recordingObserver) Notify(_ context.Context, rec auditlog.Record) {
	o.records = append(o.records, rec)
}

type panickyObserver struct{}

func (panickyObserver) Notify(context.Context, auditlog.Record) {
	panic("observer exploded")
}

// captureSink collects debug mirror lines.
type captureSink struct {
	lines []string
}

func (s *captureSink) Write(_ context.Context, line string) {
	s.lines = append(s.lines, line)
}

type ServiceSuite struct {
	suite.Suite
	store   *memory.Store
	service *auditlog.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()

	var err error
	s.service, err = auditlog.NewService(s.store, slog.Default())
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := auditlog.NewService(nil, slog.Default())
		s.Error(err)
		s.Contains(err.Error(), "audit store is required")
	})
}

func (s *ServiceSuite) TestLogReturnsID() {
	ctx := context.Background()

	first := s.service.Log(ctx, auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)
	second := s.service.Log(ctx, auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)

	s.Equal(int64(1), first)
	s.Equal(int64(2), second)
}

func (s *ServiceSuite) TestWriteFailureReturnsSentinel() {
	svc, err := auditlog.NewService(failingStore{}, slog.Default())
	s.Require().NoError(err)

	id := svc.Log(context.Background(), auditlog.LevelError, "boom", nil, "")
	s.Equal(int64(0), id, "failed writes return the zero sentinel, never an error")
}

func (s *ServiceSuite) TestMessageExtractedFromContext() {
	ctx := context.Background()

	s.service.Log(ctx, auditlog.LevelInfo, "document_created",
		map[string]any{"message": "contract uploaded", "document_id": "d1"},
		auditlog.CategoryDocument)

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)

	s.Equal("contract uploaded", recs[0].Message)
	s.NotContains(recs[0].Context, "message", "message key is removed from the stored blob")
	s.Equal("d1", recs[0].Context["document_id"])
}

func (s *ServiceSuite) TestMessageDefaultsToEvent() {
	ctx := context.Background()

	s.service.Log(ctx, auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("document_created", recs[0].Message)
}

func (s *ServiceSuite) TestTimestampInjectionOverwritesCaller() {
	callTime := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), callTime)

	s.service.Log(ctx, auditlog.LevelInfo, "document_created",
		map[string]any{"timestamp": "1999-01-01T00:00:00Z"},
		auditlog.CategoryDocument)

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(callTime.Format(time.RFC3339), recs[0].Context["timestamp"],
		"caller-supplied timestamp is overwritten with the call-time UTC value")
}

func (s *ServiceSuite) TestAmbientActorWinsOverExplicit() {
	ctx := requestcontext.WithActorID(context.Background(), "ambient-user")

	s.service.Log(ctx, auditlog.LevelInfo, "document_created",
		map[string]any{"user_id": "explicit-user"},
		auditlog.CategoryDocument)

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("ambient-user", recs[0].UserID)
}

func (s *ServiceSuite) TestExplicitFallbackWithoutAmbientActor() {
	ctx := context.Background()

	s.service.Log(ctx, auditlog.LevelInfo, "document_created",
		map[string]any{"user_id": "explicit-user"},
		auditlog.CategoryDocument)

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("explicit-user", recs[0].UserID)
}

func (s *ServiceSuite) TestPreferExplicitActorFlipsPrecedence() {
	svc, err := auditlog.NewService(s.store, slog.Default(), auditlog.WithPreferExplicitActor())
	s.Require().NoError(err)

	ctx := requestcontext.WithActorID(context.Background(), "ambient-user")
	svc.Log(ctx, auditlog.LevelInfo, "document_created",
		map[string]any{"user_id": "explicit-user"},
		auditlog.CategoryDocument)

	recs, err := svc.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("explicit-user", recs[0].UserID)
}

func (s *ServiceSuite) TestRequestMetadataCaptured() {
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.9", "curl/8")
	ctx = requestcontext.WithRequestURL(ctx, "https://assina.example/documents/d1")

	s.service.Log(ctx, auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("203.0.113.9", recs[0].IPAddress)
	s.Equal("https://assina.example/documents/d1", recs[0].URL)
}

func (s *ServiceSuite) TestCallerContextMapNotMutated() {
	ctx := context.Background()
	callerMap := map[string]any{"message": "hello", "document_id": "d1"}

	s.service.Log(ctx, auditlog.LevelInfo, "document_created", callerMap, auditlog.CategoryDocument)

	s.Equal("hello", callerMap["message"], "caller's map keeps its message key")
	s.NotContains(callerMap, "timestamp")
}

func (s *ServiceSuite) TestObserverNotifiedAfterPersist() {
	obs := &recordingObserver{}
	svc, err := auditlog.NewService(s.store, slog.Default(), auditlog.WithObservers(obs))
	s.Require().NoError(err)

	id := svc.Log(context.Background(), auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)

	s.Require().Len(obs.records, 1)
	s.Equal(id, obs.records[0].ID, "observer sees the assigned record ID")
}

func (s *ServiceSuite) TestObserverPanicDoesNotAffectWrite() {
	obs := &recordingObserver{}
	svc, err := auditlog.NewService(s.store, slog.Default(),
		auditlog.WithObservers(panickyObserver{}, obs))
	s.Require().NoError(err)

	id := svc.Log(context.Background(), auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)

	s.NotZero(id, "write succeeds despite the panicking observer")
	s.Len(obs.records, 1, "later observers still run")
}

func (s *ServiceSuite) TestObserverNotNotifiedOnWriteFailure() {
	obs := &recordingObserver{}
	svc, err := auditlog.NewService(failingStore{}, slog.Default(), auditlog.WithObservers(obs))
	s.Require().NoError(err)

	svc.Log(context.Background(), auditlog.LevelInfo, "document_created", nil, auditlog.CategoryDocument)

	s.Empty(obs.records)
}

func (s *ServiceSuite) TestDebugMirrorFormat() {
	sink := &captureSink{}
	svc, err := auditlog.NewService(s.store, slog.Default(), auditlog.WithDebugSinks(sink))
	s.Require().NoError(err)

	svc.Log(context.Background(), auditlog.LevelWarning, "endpoint_blocked",
		map[string]any{"message": "blocked attempt"},
		auditlog.CategoryAuth)

	s.Require().Len(sink.lines, 1)
	s.Contains(sink.lines[0], "[WARNING] [auth] endpoint_blocked: blocked attempt")
	s.Contains(sink.lines[0], `"timestamp"`)
}

func (s *ServiceSuite) TestNoMirrorWithoutDebug() {
	// The default service has no sinks registered; nothing to assert
	// beyond the write succeeding.
	id := s.service.Log(context.Background(), auditlog.LevelDebug, "noop", nil, "")
	s.NotZero(id)
}

func (s *ServiceSuite) TestDefaultCategory() {
	ctx := context.Background()

	s.service.Log(ctx, auditlog.LevelInfo, "something_happened", nil, "")

	recs, err := s.service.Query(ctx, auditlog.Filter{})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(auditlog.CategoryGeneral, recs[0].Category)
}

func (s *ServiceSuite) TestUnrecognizedCategoryStoredVerbatim() {
	ctx := context.Background()

	s.service.Log(ctx, auditlog.LevelInfo, "custom", nil, "billing")

	recs, err := s.service.Query(ctx, auditlog.Filter{Category: "billing"})
	s.Require().NoError(err)
	s.Len(recs, 1)
}

func (s *ServiceSuite) TestQueryFailurePropagates() {
	svc, err := auditlog.NewService(failingStore{}, slog.Default())
	s.Require().NoError(err)

	_, err = svc.Query(context.Background(), auditlog.Filter{})
	s.Error(err, "query failures surface, unlike writes")
}

func (s *ServiceSuite) TestCleanupRejectsNegativeDays() {
	_, err := s.service.Cleanup(context.Background(), -1)
	s.Error(err)
}

func (s *ServiceSuite) TestLogThenQueryRoundTrip() {
	ctx := context.Background()

	id := s.service.Log(ctx, auditlog.LevelInfo, "document_created",
		map[string]any{"document_id": 42}, auditlog.CategoryDocument)
	s.Require().NotZero(id)

	recs, err := s.service.Query(ctx, auditlog.Filter{
		Category: auditlog.CategoryDocument,
		Event:    "document",
	})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(42, recs[0].Context["document_id"])
	s.Contains(recs[0].Context, "timestamp")
}
