// Package tenants resolves API keys to tenant identities. The mapping is
// static, loaded once from configuration; it is the entry point of the
// multi-tenant isolation boundary.
package tenants

import (
	"github.com/FirasKoutari/RAG-multi-tenant/internal/config"
)

// Tenant is one configured tenant.
type Tenant struct {
	ID     string
	APIKey string
}

// Resolver looks up tenants by API key.
type Resolver struct {
	byKey map[string]Tenant
}

// NewResolver builds a Resolver from the configured tenant list.
func NewResolver(configured []config.TenantConfig) *Resolver {
	byKey := make(map[string]Tenant, len(configured))
	for _, tc := range configured {
		byKey[tc.APIKey] = Tenant{ID: tc.ID, APIKey: tc.APIKey}
	}
	return &Resolver{byKey: byKey}
}

// Resolve returns the tenant owning apiKey, or false for a missing or
// unknown key.
func (r *Resolver) Resolve(apiKey string) (Tenant, bool) {
	if apiKey == "" {
		return Tenant{}, false
	}
	t, ok := r.byKey[apiKey]
	return t, ok
}
