package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/index"
)

// fakeLLM is a scriptable provider for exercising the fallback chain.
type fakeLLM struct {
	available bool
	reply     string
	err       error
	called    bool
}

func (f *fakeLLM) IsAvailable(context.Context) bool { return f.available }
func (f *fakeLLM) Name() string                     { return "fake" }
func (f *fakeLLM) Generate(context.Context, string, string) (string, error) {
	f.called = true
	return f.reply, f.err
}

func sampleHits() []index.SearchHit {
	return []index.SearchHit{
		{Chunk: index.Chunk{TenantID: "tenantA", DocID: "docA1.txt", ChunkID: 0, Text: "premier extrait"}, Score: 0.8},
		{Chunk: index.Chunk{TenantID: "tenantA", DocID: "docA2.txt", ChunkID: 2, Text: "second extrait"}, Score: 0.3},
	}
}

func TestGate(t *testing.T) {
	hits := []index.SearchHit{
		{Chunk: index.Chunk{DocID: "a"}, Score: 0.5},
		{Chunk: index.Chunk{DocID: "b"}, Score: 0.12},
		{Chunk: index.Chunk{DocID: "c"}, Score: 0.119},
		{Chunk: index.Chunk{DocID: "d"}, Score: 0.01},
	}
	kept := Gate(hits, DefaultMinScore)
	if len(kept) != 2 {
		t.Fatalf("got %d hits, want 2", len(kept))
	}
	if kept[0].Chunk.DocID != "a" || kept[1].Chunk.DocID != "b" {
		t.Errorf("kept wrong hits: %v", kept)
	}
}

func TestGate_NothingSurvives(t *testing.T) {
	hits := []index.SearchHit{{Chunk: index.Chunk{DocID: "a"}, Score: 0.05}}
	if kept := Gate(hits, DefaultMinScore); kept != nil {
		t.Errorf("got %v, want no hits kept", kept)
	}
}

func TestExtractive_Format(t *testing.T) {
	got := Extractive(sampleHits())
	want := "Extraits pertinents trouvés dans vos documents :\n" +
		"- (docA1.txt | chunk 0) premier extrait\n" +
		"- (docA2.txt | chunk 2) second extrait"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSynthesize_ProviderUnavailable(t *testing.T) {
	provider := &fakeLLM{available: false}
	s := NewSynthesizer(provider)

	hits := sampleHits()
	got, used := s.Synthesize(context.Background(), hits, "question")
	if used {
		t.Error("usedGeneration must be false when the provider is unavailable")
	}
	if got != Extractive(hits) {
		t.Error("answer must exactly equal the extractive concatenation")
	}
	if provider.called {
		t.Error("generation must not be invoked when unavailable")
	}
}

func TestSynthesize_NilProvider(t *testing.T) {
	s := NewSynthesizer(nil)
	hits := sampleHits()
	got, used := s.Synthesize(context.Background(), hits, "question")
	if used || got != Extractive(hits) {
		t.Error("nil provider must yield the extractive answer")
	}
}

func TestSynthesize_GenerationSucceeds(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{available: true, reply: "réponse générée"})
	got, used := s.Synthesize(context.Background(), sampleHits(), "question")
	if !used {
		t.Error("usedGeneration must be true")
	}
	if got != "réponse générée" {
		t.Errorf("got %q", got)
	}
}

func TestSynthesize_GenerationFailureFallsBack(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{available: true, err: errors.New("model exploded")})
	hits := sampleHits()
	got, used := s.Synthesize(context.Background(), hits, "question")
	if used {
		t.Error("usedGeneration must be false after a generation error")
	}
	if got != Extractive(hits) {
		t.Error("generation errors must fall back to the extractive answer")
	}
}

func TestSynthesize_EmptyGenerationFallsBack(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{available: true, reply: ""})
	hits := sampleHits()
	got, used := s.Synthesize(context.Background(), hits, "question")
	if used {
		t.Error("usedGeneration must be false for empty generation output")
	}
	if !strings.HasPrefix(got, "Extraits pertinents") {
		t.Errorf("got %q, want extractive fallback", got)
	}
}

func TestSynthesize_NoHits(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{available: true, reply: "x"})
	got, used := s.Synthesize(context.Background(), nil, "question")
	if got != "" || used {
		t.Errorf("got (%q, %v), want empty no-answer", got, used)
	}
}
