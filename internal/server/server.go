// Package server exposes the retrieval-and-answer engine over HTTP. Every
// data route resolves the calling tenant from its X-API-KEY header first;
// handlers only ever touch that tenant's index.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/answer"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/config"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/llm"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/querylog"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/registry"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/tenants"
)

// Server wires the registry, synthesizer and stores behind a chi router.
type Server struct {
	cfg         *config.Config
	registry    *registry.Registry
	resolver    *tenants.Resolver
	synthesizer *answer.Synthesizer
	llmProvider llm.Provider
	logs        *querylog.Store
	router      chi.Router
	httpServer  *http.Server
}

// New creates a Server with all dependencies. llmProvider may be nil.
func New(cfg *config.Config, reg *registry.Registry, resolver *tenants.Resolver, llmProvider llm.Provider, logs *querylog.Store) *Server {
	s := &Server{
		cfg:         cfg,
		registry:    reg,
		resolver:    resolver,
		synthesizer: answer.NewSynthesizer(llmProvider),
		llmProvider: llmProvider,
		logs:        logs,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-KEY"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireTenant)
		r.Post("/query", s.handleQuery)
		r.Get("/stats/{tenantID}", s.handleStats)
		r.Put("/documents/{docID}", s.handleUploadDocument)
		r.Post("/reload", s.handleReload)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ragsearch server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
