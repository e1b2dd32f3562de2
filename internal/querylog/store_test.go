package querylog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndStats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entries := []Entry{
		{TenantID: "tenantA", Question: "q1", Answer: "a1", LLMUsed: true, SourcesCount: 2, ExecutionTimeMS: 12.5},
		{TenantID: "tenantA", Question: "q2", Answer: "a2", SourcesCount: 1},
		{TenantID: "tenantA", Question: "q3", NoAnswer: true},
		{TenantID: "tenantB", Question: "other tenant", Answer: "x", SourcesCount: 1},
	}
	for _, e := range entries {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	stats, err := store.TenantStats(ctx, "tenantA", 10)
	if err != nil {
		t.Fatalf("TenantStats: %v", err)
	}
	if stats.TotalQueries != 3 {
		t.Errorf("total = %d, want 3", stats.TotalQueries)
	}
	if stats.LLMQueries != 1 {
		t.Errorf("llm = %d, want 1", stats.LLMQueries)
	}
	if stats.ExtractiveQueries != 2 {
		t.Errorf("extractive = %d, want 2", stats.ExtractiveQueries)
	}
	if stats.NoAnswerQueries != 1 {
		t.Errorf("no answer = %d, want 1", stats.NoAnswerQueries)
	}
	if len(stats.RecentQueries) != 3 {
		t.Errorf("recent = %d, want 3", len(stats.RecentQueries))
	}

	// Stats never mix tenants.
	for _, e := range stats.RecentQueries {
		if e.TenantID != "tenantA" {
			t.Errorf("recent query belongs to %q", e.TenantID)
		}
	}
}

func TestTenantStats_TruncatesRecentQuestions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	long := strings.Repeat("é", recentQuestionLength+50)
	if err := store.Log(ctx, Entry{TenantID: "tenantA", Question: long, NoAnswer: true}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := store.Log(ctx, Entry{TenantID: "tenantA", Question: "court", NoAnswer: true}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	stats, err := store.TenantStats(ctx, "tenantA", 10)
	if err != nil {
		t.Fatalf("TenantStats: %v", err)
	}
	for _, e := range stats.RecentQueries {
		if got := len([]rune(e.Question)); got > recentQuestionLength {
			t.Errorf("recent question has %d characters, want at most %d", got, recentQuestionLength)
		}
	}

	// The log itself keeps the full question.
	var stored string
	if err := store.db.QueryRow(
		"SELECT question FROM query_logs WHERE question <> 'court'").Scan(&stored); err != nil {
		t.Fatalf("reading stored question: %v", err)
	}
	if stored != long {
		t.Errorf("stored question truncated to %d characters", len([]rune(stored)))
	}
}

func TestLog_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	meta := json.RawMessage(`{"min_score":0.12}`)
	if err := store.Log(ctx, Entry{TenantID: "tenantA", Question: "q", Metadata: meta}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	stats, err := store.TenantStats(ctx, "tenantA", 1)
	if err != nil {
		t.Fatalf("TenantStats: %v", err)
	}
	if string(stats.RecentQueries[0].Metadata) != string(meta) {
		t.Errorf("metadata = %s, want %s", stats.RecentQueries[0].Metadata, meta)
	}
}

func TestTouchAPIKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := store.TouchAPIKey(ctx, "tenantA", "tenantA_key"); err != nil {
			t.Fatalf("TouchAPIKey: %v", err)
		}
	}

	count, err := store.RequestCount(ctx, "tenantA", "tenantA_key")
	if err != nil {
		t.Fatalf("RequestCount: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	count, err = store.RequestCount(ctx, "tenantA", "never_used")
	if err != nil {
		t.Fatalf("RequestCount: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for unused key", count)
	}
}
