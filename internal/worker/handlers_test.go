package worker

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohabitat/assistant-core/internal/tools"
)

// TestRequireScope verifies requests without valid scope headers are
// rejected before reaching a handler.
func TestRequireScope(t *testing.T) {
	svc := &Service{}

	var captured tools.Scope
	handler := svc.requireScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = tools.ScopeFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No headers at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Party header only.
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set(HeaderPartyID, uuid.NewString())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed user header.
	req.Header.Set(HeaderUserID, "not-a-uuid")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Both headers valid.
	partyID := uuid.New()
	userID := uuid.New()
	req = httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set(HeaderPartyID, partyID.String())
	req.Header.Set(HeaderUserID, userID.String())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, partyID, captured.PartyID)
	assert.Equal(t, userID, captured.UserID)
}

// TestHandleHealth verifies the health payload.
func TestHandleHealth(t *testing.T) {
	svc := &Service{version: "test", startTime: time.Now()}

	rec := httptest.NewRecorder()
	svc.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

// TestHandleListTools verifies the catalog endpoint exposes all five tools.
func TestHandleListTools(t *testing.T) {
	svc := &Service{}

	rec := httptest.NewRecorder()
	svc.handleListTools(rec, httptest.NewRequest(http.MethodGet, "/api/tools", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []tools.Definition `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 5)
	assert.Equal(t, tools.ToolSearchDocuments, body.Tools[0].Name)
}
