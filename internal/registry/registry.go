// Package registry owns the tenant-to-index mapping. Indexes are built
// lazily, cached, and replaced wholesale on reload; entries are never
// merged across tenants.
package registry

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/index"
)

// Registry maps tenant ids to their indexes. Each tenant's documents live
// in <baseDir>/<tenantID>/. Lookups return an immutable *TenantIndex
// snapshot; Reload builds the replacement outside the lock and swaps the
// pointer, so in-flight readers always observe a fully built index,
// either pre- or post-reload, never a mix.
type Registry struct {
	baseDir string
	opts    index.BuildOptions

	mu      sync.RWMutex
	indexes map[string]*index.TenantIndex
}

// New creates a Registry rooted at baseDir.
func New(baseDir string, opts index.BuildOptions) *Registry {
	return &Registry{
		baseDir: baseDir,
		opts:    opts,
		indexes: make(map[string]*index.TenantIndex),
	}
}

// Get returns the tenant's index, building and caching it on first access.
// A tenant id with no corresponding directory fails construction for that
// tenant only.
func (r *Registry) Get(ctx context.Context, tenantID string) (*index.TenantIndex, error) {
	r.mu.RLock()
	idx, ok := r.indexes[tenantID]
	r.mu.RUnlock()
	if ok {
		return idx, nil
	}
	return r.build(ctx, tenantID, false)
}

// Reload rebuilds the tenant's index from the current directory contents
// and replaces the cached entry.
func (r *Registry) Reload(ctx context.Context, tenantID string) error {
	_, err := r.build(ctx, tenantID, true)
	return err
}

// Preload builds the indexes for the given tenants up front. A failing
// tenant does not prevent the others from loading; the first error is
// returned after all tenants were attempted.
func (r *Registry) Preload(ctx context.Context, tenantIDs []string) error {
	var firstErr error
	for _, id := range tenantIDs {
		if _, err := r.Get(ctx, id); err != nil {
			log.Printf("registry: preload %s: %v", id, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Tenants returns the ids with a cached index.
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.indexes))
	for id := range r.indexes {
		ids = append(ids, id)
	}
	return ids
}

// Dir returns the document directory for a tenant.
func (r *Registry) Dir(tenantID string) string {
	return filepath.Join(r.baseDir, tenantID)
}

// build constructs the index outside the lock, then installs it. When
// replace is false a concurrently installed entry wins, so parallel first
// accesses all end up sharing one snapshot.
func (r *Registry) build(ctx context.Context, tenantID string, replace bool) (*index.TenantIndex, error) {
	idx, err := index.Build(ctx, tenantID, r.Dir(tenantID), r.opts)
	if err != nil {
		return nil, fmt.Errorf("building index for tenant %s: %w", tenantID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !replace {
		if existing, ok := r.indexes[tenantID]; ok {
			return existing, nil
		}
	}
	r.indexes[tenantID] = idx
	return idx, nil
}
