package server

import (
	"context"
	"net/http"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/tenants"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

// requireTenant resolves the calling tenant from the X-API-KEY header and
// stores it in the request context. Requests with a missing or unknown key
// are rejected with 401 before any tenant data is touched.
func (s *Server) requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := s.resolver.Resolve(r.Header.Get("X-API-KEY"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid or missing X-API-KEY")
			return
		}
		ctx := context.WithValue(r.Context(), tenantContextKey, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantFrom returns the tenant the middleware authenticated.
func tenantFrom(r *http.Request) tenants.Tenant {
	t, _ := r.Context().Value(tenantContextKey).(tenants.Tenant)
	return t
}
