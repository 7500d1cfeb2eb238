package worker

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/internal/search"
	"github.com/cohabitat/assistant-core/internal/tools"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// Scope headers set by the upstream API gateway after authentication.
const (
	HeaderPartyID = "X-Party-ID"
	HeaderUserID  = "X-User-ID"
)

// maxRequestBody caps request payloads.
const maxRequestBody = 1 << 20

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requireScope extracts the authenticated (party, user) pair from the gateway
// headers. Requests without both headers never reach a handler.
func (s *Service) requireScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partyID, err := uuid.Parse(r.Header.Get(HeaderPartyID))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid "+HeaderPartyID)
			return
		}
		userID, err := uuid.Parse(r.Header.Get(HeaderUserID))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid "+HeaderUserID)
			return
		}

		scope := tools.Scope{PartyID: partyID, UserID: userID}
		next.ServeHTTP(w, r.WithContext(tools.WithScope(r.Context(), scope)))
	})
}

// handleHealth handles health check requests.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleListTools returns the tool catalog with JSON schemas.
func (s *Service) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools.Catalog(),
	})
}

// handleStats returns runtime counters.
func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"search": s.searchMgr.Stats(),
		"outbox": s.deliverer.Stats(),
		"db":     s.store.Stats(),
	})
}

// DispatchRequest is a single tool invocation.
type DispatchRequest struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleDispatch executes one tool call inside the request's scope. Tool
// failures are part of the result contract, so the HTTP status is 200 for
// anything that produced a ToolResult.
func (s *Service) handleDispatch(w http.ResponseWriter, r *http.Request) {
	scope, _ := tools.ScopeFrom(r.Context())

	var req DispatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dispatcher := tools.New(s.searchMgr, s.tasks, s.members, scope)
	result := dispatcher.Dispatch(r.Context(), req.Tool, req.Arguments)
	writeJSON(w, http.StatusOK, result)
}

// handleSearch runs a scoped semantic search.
func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	scope, _ := tools.ScopeFrom(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	limit := search.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	chunks, err := s.searchMgr.SearchText(r.Context(), scope.PartyID, query, limit)
	if err != nil {
		log.Error().Err(err).Str("party_id", scope.PartyID.String()).Msg("Search failed")
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(chunks),
		"results": chunks,
	})
}

// CreateDocumentRequest registers a document and its pre-chunked content.
type CreateDocumentRequest struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Chunks   []string `json:"chunks"`
}

// handleCreateDocument stores a document as pending; the ingest pipeline
// picks it up for embedding.
func (s *Service) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	scope, _ := tools.ScopeFrom(r.Context())

	var req CreateDocumentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Chunks) == 0 {
		writeError(w, http.StatusBadRequest, "at least one chunk is required")
		return
	}

	category := models.DocumentCategory(req.Category)
	if req.Category == "" {
		category = models.CategoryOther
	}

	doc := &models.Document{
		PartyID:  scope.PartyID,
		Title:    req.Title,
		Category: category,
	}
	chunks := make([]models.DocumentChunk, len(req.Chunks))
	for i, content := range req.Chunks {
		chunks[i] = models.DocumentChunk{ChunkIndex: i, Content: content}
	}

	if err := s.documents.CreateDocument(r.Context(), doc, chunks); err != nil {
		log.Error().Err(err).Str("party_id", scope.PartyID.String()).Msg("Create document failed")
		writeError(w, http.StatusInternalServerError, "create document failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     doc.ID,
		"status": doc.Status,
		"chunks": len(chunks),
	})
}

// handleIngestDocument embeds a document's chunks immediately instead of
// waiting for the next poll.
func (s *Service) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	scope, _ := tools.ScopeFrom(r.Context())

	documentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	// Scoped lookup first so one party cannot trigger ingest of another's
	// document, or learn that it exists.
	doc, err := s.documents.GetDocument(r.Context(), scope.PartyID, documentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	if err := s.pipeline.ProcessDocument(r.Context(), doc.ID); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("Manual ingest failed")
		writeError(w, http.StatusBadGateway, "ingest failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     doc.ID,
		"status": models.DocumentReady,
	})
}
