package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero norm left", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero norm right", []float32{1, 1}, []float32{0, 0}, 0},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"magnitude independent", []float32{2, 0}, []float32{7, 0}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func newOllamaTestServer(t *testing.T, failFor map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if failFor[req.Prompt] {
			http.Error(w, "model overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embedding: []float32{float32(len(req.Prompt)), 1, 0},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	srv := newOllamaTestServer(t, nil)
	p := NewOllamaProvider("mistral", srv.URL, 2)
	if !p.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}

	down := NewOllamaProvider("mistral", "http://127.0.0.1:1", 2)
	if down.IsAvailable(context.Background()) {
		t.Error("expected unreachable provider to be unavailable")
	}
}

func TestOllamaProvider_EmbedText(t *testing.T) {
	srv := newOllamaTestServer(t, nil)
	p := NewOllamaProvider("mistral", srv.URL, 2)

	vec, err := p.EmbedText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("got %d dims, want 3", len(vec))
	}
	if vec[0] != 5 {
		t.Errorf("got vec[0]=%v, want 5", vec[0])
	}
}

func TestOllamaProvider_EmbedBatch_PartialFailure(t *testing.T) {
	srv := newOllamaTestServer(t, map[string]bool{"bad": true})
	p := NewOllamaProvider("mistral", srv.URL, 4)

	texts := []string{"one", "bad", "three"}
	vecs, err := p.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d results, want 3", len(vecs))
	}
	if vecs[0] == nil || vecs[2] == nil {
		t.Error("successful embeddings must be present")
	}
	if vecs[1] != nil {
		t.Error("failed embedding must yield a nil entry, not abort the batch")
	}
}

func TestOllamaProvider_EmbedBatch_Cancelled(t *testing.T) {
	srv := newOllamaTestServer(t, nil)
	p := NewOllamaProvider("mistral", srv.URL, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// With free semaphore slots the dispatch loop must still notice the
	// cancelled context on every iteration, so repeat enough times that
	// a racy select could not pass by luck.
	for i := 0; i < 200; i++ {
		vecs, err := p.EmbedBatch(ctx, []string{"a", "b", "c", "d"})
		if err == nil {
			t.Fatalf("iteration %d: cancelled context went unreported (results %v)", i, vecs)
		}
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("iteration %d: got %v, want context.Canceled", i, err)
		}
	}
}

func TestNewProvider(t *testing.T) {
	if p, err := NewProvider("none", "", "", 1); err != nil || p != nil {
		t.Errorf("none provider: got (%v, %v), want (nil, nil)", p, err)
	}
	if _, err := NewProvider("bogus", "", "", 1); err == nil {
		t.Error("expected error for unsupported provider type")
	}
	p, err := NewProvider("ollama", "mistral", "", 4)
	if err != nil {
		t.Fatalf("ollama provider: %v", err)
	}
	if p.Name() != "ollama/mistral" {
		t.Errorf("got name %q", p.Name())
	}
}
