// Package querylog persists per-tenant query history and API key usage.
package querylog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/db"
)

// Entry is one logged query.
type Entry struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	Question        string          `json:"question"`
	Answer          string          `json:"answer,omitempty"`
	NoAnswer        bool            `json:"no_answer"`
	LLMUsed         bool            `json:"llm_used"`
	SourcesCount    int             `json:"sources_count"`
	ExecutionTimeMS float64         `json:"execution_time_ms"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Stats aggregates one tenant's query history.
type Stats struct {
	TenantID          string  `json:"tenant_id"`
	TotalQueries      int     `json:"total_queries"`
	LLMQueries        int     `json:"llm_queries"`
	ExtractiveQueries int     `json:"extractive_queries"`
	NoAnswerQueries   int     `json:"no_answer_queries"`
	RecentQueries     []Entry `json:"recent_queries"`
}

// Store provides query log persistence.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a query entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	metadata := entry.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}

	var answer sql.NullString
	if entry.Answer != "" {
		answer = sql.NullString{String: entry.Answer, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_logs (
			id, tenant_id, question, answer, no_answer, llm_used,
			sources_count, execution_time_ms, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TenantID,
		entry.Question,
		answer,
		entry.NoAnswer,
		entry.LLMUsed,
		entry.SourcesCount,
		entry.ExecutionTimeMS,
		string(metadata),
	)
	if err != nil {
		return fmt.Errorf("inserting query log: %w", err)
	}
	return nil
}

// TouchAPIKey bumps the request counter for a tenant's API key, creating
// the row on first use.
func (s *Store) TouchAPIKey(ctx context.Context, tenantID, apiKey string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_key_usage (id, tenant_id, api_key, request_count, last_used_at)
		VALUES (?, ?, ?, 1, datetime('now'))
		ON CONFLICT(tenant_id, api_key) DO UPDATE SET
			request_count = request_count + 1,
			last_used_at = datetime('now')`,
		uuid.New().String(), tenantID, apiKey,
	)
	if err != nil {
		return fmt.Errorf("updating api key usage: %w", err)
	}
	return nil
}

// RequestCount returns the recorded request count for a tenant's API key,
// 0 when the key was never used.
func (s *Store) RequestCount(ctx context.Context, tenantID, apiKey string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT request_count FROM api_key_usage
		WHERE tenant_id = ? AND api_key = ?`, tenantID, apiKey).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading api key usage: %w", err)
	}
	return count, nil
}

// TenantStats aggregates a tenant's query history, including its most
// recent entries (up to recentLimit).
func (s *Store) TenantStats(ctx context.Context, tenantID string, recentLimit int) (*Stats, error) {
	if recentLimit <= 0 {
		recentLimit = 10
	}

	stats := &Stats{TenantID: tenantID}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(llm_used), 0),
			COALESCE(SUM(no_answer), 0)
		FROM query_logs WHERE tenant_id = ?`, tenantID).
		Scan(&stats.TotalQueries, &stats.LLMQueries, &stats.NoAnswerQueries)
	if err != nil {
		return nil, fmt.Errorf("aggregating query logs: %w", err)
	}
	stats.ExtractiveQueries = stats.TotalQueries - stats.LLMQueries

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, question, answer, no_answer, llm_used,
			sources_count, execution_time_ms, metadata, created_at
		FROM query_logs
		WHERE tenant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, tenantID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recent queries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry    Entry
			answer   sql.NullString
			execTime sql.NullFloat64
			metadata string
		)
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Question, &answer,
			&entry.NoAnswer, &entry.LLMUsed, &entry.SourcesCount, &execTime,
			&metadata, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning query log: %w", err)
		}
		entry.Question = truncate(entry.Question, recentQuestionLength)
		entry.Answer = answer.String
		entry.ExecutionTimeMS = execTime.Float64
		entry.Metadata = json.RawMessage(metadata)
		stats.RecentQueries = append(stats.RecentQueries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query logs: %w", err)
	}
	return stats, nil
}

// recentQuestionLength caps the question preview in stats responses. The
// full question stays in the query_logs table.
const recentQuestionLength = 100

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
