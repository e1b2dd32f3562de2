package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/chunker"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/index"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	base := t.TempDir()
	split, err := chunker.New(chunker.DefaultSize, chunker.DefaultOverlap)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	return New(base, index.BuildOptions{Splitter: split}), base
}

func writeTenantDoc(t *testing.T, base, tenantID, name, content string) {
	t.Helper()
	dir := filepath.Join(base, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestGet_BuildsAndCaches(t *testing.T) {
	r, base := newTestRegistry(t)
	writeTenantDoc(t, base, "tenantA", "doc.txt", "renewal policy content")

	first, err := r.Get(context.Background(), "tenantA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := r.Get(context.Background(), "tenantA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Error("repeated Get must return the cached snapshot")
	}
}

func TestGet_MissingTenantDirFailsOnlyThatTenant(t *testing.T) {
	r, base := newTestRegistry(t)
	writeTenantDoc(t, base, "tenantA", "doc.txt", "content")

	if _, err := r.Get(context.Background(), "ghost"); err == nil {
		t.Error("expected error for tenant without a directory")
	}
	if _, err := r.Get(context.Background(), "tenantA"); err != nil {
		t.Errorf("healthy tenant must be unaffected: %v", err)
	}
}

func TestReload_SwapsSnapshot(t *testing.T) {
	r, base := newTestRegistry(t)
	writeTenantDoc(t, base, "tenantA", "doc.txt", "original content about contracts")

	before, err := r.Get(context.Background(), "tenantA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	writeTenantDoc(t, base, "tenantA", "extra.txt", "freshly uploaded zephyrium notes")
	if err := r.Reload(context.Background(), "tenantA"); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	after, err := r.Get(context.Background(), "tenantA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if before == after {
		t.Fatal("Reload must replace the cached snapshot")
	}

	// The pre-reload snapshot stays internally consistent for readers
	// that still hold it.
	if hits := before.Search(context.Background(), "zephyrium", 3); len(hits) != 0 {
		t.Error("old snapshot must not see post-reload documents")
	}
	if hits := after.Search(context.Background(), "zephyrium", 3); len(hits) == 0 {
		t.Error("new snapshot must see post-reload documents")
	}
}

func TestGet_ConcurrentFirstAccessSharesOneSnapshot(t *testing.T) {
	r, base := newTestRegistry(t)
	writeTenantDoc(t, base, "tenantA", "doc.txt", "shared content")

	const workers = 8
	results := make([]*index.TenantIndex, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := r.Get(context.Background(), "tenantA")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = idx
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent first accesses must converge on one snapshot")
		}
	}
}

func TestRegistry_NeverMergesTenants(t *testing.T) {
	r, base := newTestRegistry(t)
	writeTenantDoc(t, base, "tenantA", "a.txt", "zephyrium vault instructions")
	writeTenantDoc(t, base, "tenantB", "b.txt", "cafeteria menu")

	idxB, err := r.Get(context.Background(), "tenantB")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hits := idxB.Search(context.Background(), "zephyrium", 3); len(hits) != 0 {
		t.Error("tenant B's index must not contain tenant A's content")
	}
	for _, id := range r.Tenants() {
		idx, _ := r.Get(context.Background(), id)
		if idx.TenantID() != id {
			t.Errorf("index for %s claims tenant %s", id, idx.TenantID())
		}
	}
}
