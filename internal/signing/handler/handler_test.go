package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assina/internal/auditlog"
	auditmemory "assina/internal/auditlog/store/memory"
	"assina/internal/directory"
	"assina/internal/signing"
	"assina/internal/signing/handler"
	"assina/pkg/testutil"
)

// testStack is the full module wired onto in-memory stores behind a chi
// router. Requests carry their actor via testutil.WithActor instead of the
// real auth middleware.
type testStack struct {
	router *chi.Mux
	store  *directory.MemoryStore
	audit  *auditlog.Service
	actor  string
}

func newStack(t *testing.T, actorID string) *testStack {
	t.Helper()

	store := directory.NewMemoryStore()
	audit, err := auditlog.NewService(auditmemory.New(), slog.Default())
	require.NoError(t, err)

	dir, err := directory.NewService(store)
	require.NoError(t, err)

	signer, err := signing.NewService(dir, store, store, audit, nil)
	require.NoError(t, err)

	h := handler.New(signer, audit, slog.Default())
	router := chi.NewRouter()
	h.Register(router)
	h.RegisterAdmin(router)

	return &testStack{router: router, store: store, audit: audit, actor: actorID}
}

func (ts *testStack) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	req = testutil.WithActor(req, ts.actor)
	return testutil.DoRequest(ts.router, req)
}

func createDocument(t *testing.T, ts *testStack, signers ...map[string]string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/documents", map[string]any{
		"title":   "Service Agreement",
		"signers": signers,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return testutil.UnmarshalResponse[map[string]any](t, w)["id"].(string)
}

func TestCreateDocument(t *testing.T) {
	ts := newStack(t, "owner")

	w := ts.do(t, http.MethodPost, "/documents", map[string]any{"title": "NDA"})

	require.Equal(t, http.StatusCreated, w.Code)
	body := testutil.UnmarshalResponse[map[string]any](t, w)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "NDA", body["title"])
	assert.Equal(t, "owner", body["owner_id"])
}

func TestCreateDocumentValidation(t *testing.T) {
	ts := newStack(t, "owner")

	w := ts.do(t, http.MethodPost, "/documents", map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	testutil.AssertErrorCode(t, w, "bad_request")
}

func TestCreateDocumentUnauthenticated(t *testing.T) {
	ts := newStack(t, "")

	w := ts.do(t, http.MethodPost, "/documents", map[string]any{"title": "NDA"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	testutil.AssertErrorCode(t, w, "unauthorized")
}

func TestViewDocument(t *testing.T) {
	ts := newStack(t, "u1")
	require.NoError(t, ts.store.SaveProfile(t.Context(), directory.Profile{UserID: "u1", CPF: "123.456.789-01"}))
	docID := createDocument(t, ts,
		map[string]string{"user_id": "u1", "name": "Ana"},
		map[string]string{"user_id": "u2"},
	)

	w := ts.do(t, http.MethodGet, "/documents/"+docID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.UnmarshalResponse[struct {
		Eligibility struct {
			Classification string `json:"classification"`
			CanSign        bool   `json:"can_sign"`
			MaskedIdentity string `json:"masked_identity"`
		} `json:"eligibility"`
		Self *struct {
			UserID string `json:"user_id"`
		} `json:"self"`
		Others []struct {
			UserID string `json:"user_id"`
			Name   string `json:"name"`
		} `json:"others"`
	}](t, w)

	assert.True(t, body.Eligibility.CanSign)
	assert.Equal(t, "CPF: ***.456.***-**", body.Eligibility.MaskedIdentity)
	require.NotNil(t, body.Self)
	assert.Equal(t, "u1", body.Self.UserID)
	require.Len(t, body.Others, 1)
	assert.Equal(t, "Unnamed signer", body.Others[0].Name, "nameless signers get the placeholder")
}

func TestViewDocumentNotFound(t *testing.T) {
	ts := newStack(t, "u1")
	require.NoError(t, ts.store.SaveProfile(t.Context(), directory.Profile{UserID: "u1", CPF: "12345678901"}))

	w := ts.do(t, http.MethodGet, "/documents/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	testutil.AssertErrorCode(t, w, "not_found")
}

func TestSignDocument(t *testing.T) {
	ts := newStack(t, "u1")
	require.NoError(t, ts.store.SaveProfile(t.Context(), directory.Profile{UserID: "u1", CPF: "12345678901"}))
	docID := createDocument(t, ts, map[string]string{"user_id": "u1", "name": "Ana"})

	w := ts.do(t, http.MethodPost, "/documents/"+docID+"/sign", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "signed", testutil.UnmarshalResponse[map[string]string](t, w)["status"])
}

func TestSignDocumentBlocked(t *testing.T) {
	ts := newStack(t, "u1")
	require.NoError(t, ts.store.SaveProfile(t.Context(), directory.Profile{UserID: "u1", Passport: "AB123456"}))
	docID := createDocument(t, ts, map[string]string{"user_id": "u1"})

	w := ts.do(t, http.MethodPost, "/documents/"+docID+"/sign", nil)

	require.Equal(t, http.StatusForbidden, w.Code)
	body := testutil.UnmarshalResponse[map[string]string](t, w)
	assert.Equal(t, "forbidden", body["error"])
	assert.Contains(t, body["error_description"], "passport")
}

func TestAuditQueryEndpoint(t *testing.T) {
	ts := newStack(t, "admin")
	ts.audit.Info(t.Context(), "document_created", map[string]any{"document_id": "d1"}, auditlog.CategoryDocument)
	ts.audit.Warning(t.Context(), "endpoint_blocked", nil, auditlog.CategoryAuth)

	w := ts.do(t, http.MethodGet, "/admin/audit-logs?category=document", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.UnmarshalResponse[struct {
		Records []struct {
			Event   string         `json:"event"`
			Context map[string]any `json:"context"`
		} `json:"records"`
	}](t, w)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "document_created", body.Records[0].Event)
	assert.Equal(t, "d1", body.Records[0].Context["document_id"])
}

func TestAuditQueryHostileOrderBy(t *testing.T) {
	ts := newStack(t, "admin")
	ts.audit.Info(t.Context(), "e1", nil, "")
	ts.audit.Info(t.Context(), "e2", nil, "")

	w := ts.do(t, http.MethodGet, "/admin/audit-logs?orderby=DROP%20TABLE%20logs", nil)

	require.Equal(t, http.StatusOK, w.Code, "unknown orderby falls back instead of failing")
	body := testutil.UnmarshalResponse[struct {
		Records []struct {
			Event string `json:"event"`
		} `json:"records"`
	}](t, w)
	assert.Len(t, body.Records, 2)
}

func TestAuditCleanupEndpoint(t *testing.T) {
	ts := newStack(t, "admin")
	ts.audit.Info(t.Context(), "old_event", nil, "")

	w := ts.do(t, http.MethodDelete, "/admin/audit-logs?days_old=0", nil)

	require.Equal(t, http.StatusOK, w.Code)
	// days_old=0 deletes everything strictly older than now; the record
	// just written has a created_at a few microseconds in the past.
	assert.EqualValues(t, 1, testutil.UnmarshalResponse[map[string]int64](t, w)["deleted"])
}

func TestAuditCleanupValidation(t *testing.T) {
	ts := newStack(t, "admin")

	for _, q := range []string{"", "days_old=-1", "days_old=abc"} {
		w := ts.do(t, http.MethodDelete, "/admin/audit-logs?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
