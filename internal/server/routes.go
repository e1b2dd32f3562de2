package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/answer"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/index"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/querylog"
)

const maxQuestionLength = 2000

// queryRequest is the /query body. The tenant id is never part of the
// body; it comes exclusively from the authenticated API key.
type queryRequest struct {
	Question string `json:"question"`
}

// source is one cited chunk in a query response.
type source struct {
	DocID   string  `json:"doc_id"`
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

type queryResponse struct {
	TenantID string   `json:"tenant_id"`
	Answer   *string  `json:"answer"`
	Sources  []source `json:"sources"`
	NoAnswer bool     `json:"no_answer"`
	LLMUsed  bool     `json:"llm_used"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	llmStatus := map[string]any{"available": false}
	if s.llmProvider != nil {
		llmStatus["available"] = s.llmProvider.IsAvailable(r.Context())
		llmStatus["model"] = s.llmProvider.Name()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": "sqlite",
		"llm":      llmStatus,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	tenant := tenantFrom(r)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLength {
		writeError(w, http.StatusBadRequest, "question is too long")
		return
	}

	if err := s.logs.TouchAPIKey(r.Context(), tenant.ID, tenant.APIKey); err != nil {
		log.Printf("query %s: touch api key: %v", tenant.ID, err)
	}

	idx, err := s.registry.Get(r.Context(), tenant.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("loading index: %v", err))
		return
	}

	hits := idx.Search(r.Context(), req.Question, s.cfg.TopK)
	hits = answer.Gate(hits, s.cfg.MinScore)

	if len(hits) == 0 {
		s.logQuery(r.Context(), querylog.Entry{
			TenantID:        tenant.ID,
			Question:        req.Question,
			NoAnswer:        true,
			ExecutionTimeMS: msSince(start),
			Metadata:        metadataJSON(s.cfg.MinScore, nil),
		})
		writeJSON(w, http.StatusOK, queryResponse{
			TenantID: tenant.ID,
			Answer:   nil,
			Sources:  []source{},
			NoAnswer: true,
		})
		return
	}

	answerText, llmUsed := s.synthesizer.Synthesize(r.Context(), hits, req.Question)

	sources := make([]source, len(hits))
	for i, h := range hits {
		sources[i] = source{
			DocID:   h.Chunk.DocID,
			ChunkID: h.Chunk.ChunkID,
			Score:   h.Score,
			Excerpt: h.Chunk.Text,
		}
	}

	s.logQuery(r.Context(), querylog.Entry{
		TenantID:        tenant.ID,
		Question:        req.Question,
		Answer:          answerText,
		LLMUsed:         llmUsed,
		SourcesCount:    len(sources),
		ExecutionTimeMS: msSince(start),
		Metadata:        metadataJSON(s.cfg.MinScore, hits),
	})

	writeJSON(w, http.StatusOK, queryResponse{
		TenantID: tenant.ID,
		Answer:   &answerText,
		Sources:  sources,
		NoAnswer: false,
		LLMUsed:  llmUsed,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	requested := chi.URLParam(r, "tenantID")
	if requested != tenant.ID {
		writeError(w, http.StatusForbidden, "Access denied to this tenant's stats")
		return
	}

	stats, err := s.logs.TenantStats(r.Context(), tenant.ID, 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	docID := chi.URLParam(r, "docID")

	if docID == "" || docID != filepath.Base(docID) || strings.HasPrefix(docID, ".") {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	if !strings.HasSuffix(strings.ToLower(docID), ".txt") {
		writeError(w, http.StatusBadRequest, "only .txt documents are accepted")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading document body")
		return
	}

	dir := s.registry.Dir(tenant.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("creating tenant directory: %v", err))
		return
	}
	if err := os.WriteFile(filepath.Join(dir, docID), body, 0o644); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("writing document: %v", err))
		return
	}

	if err := s.registry.Reload(r.Context(), tenant.ID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("reindexing: %v", err))
		return
	}

	idx, err := s.registry.Get(r.Context(), tenant.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": tenant.ID,
		"doc_id":    docID,
		"chunks":    idx.Len(),
		"mode":      idx.Mode(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	if err := s.registry.Reload(r.Context(), tenant.ID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("reloading index: %v", err))
		return
	}
	idx, err := s.registry.Get(r.Context(), tenant.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": tenant.ID,
		"chunks":    idx.Len(),
		"mode":      idx.Mode(),
	})
}

func (s *Server) logQuery(ctx context.Context, entry querylog.Entry) {
	if err := s.logs.Log(ctx, entry); err != nil {
		log.Printf("query %s: logging failed: %v", entry.TenantID, err)
	}
}

// metadataJSON records the gating threshold and cited sources alongside
// the logged query.
func metadataJSON(minScore float64, hits []index.SearchHit) json.RawMessage {
	meta := map[string]any{"min_score": minScore}
	if len(hits) > 0 {
		cited := make([]map[string]any, len(hits))
		for i, h := range hits {
			cited[i] = map[string]any{
				"doc_id":   h.Chunk.DocID,
				"chunk_id": h.Chunk.ChunkID,
				"score":    h.Score,
			}
		}
		meta["sources"] = cited
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
