// Package main provides the API router setup.
package main

import (
	"database/sql"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brightline-ai/context-engine/cmd/context-engine-api/handlers"
	"github.com/brightline-ai/context-engine/cmd/context-engine-api/middleware"
	"github.com/brightline-ai/context-engine/internal/api/rpc"
	"github.com/brightline-ai/context-engine/internal/config"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

// Connect procedure paths for the context service.
const (
	procQueryContext    = "/context.v1.ContextService/QueryContext"
	procAnalyzeDocument = "/context.v1.ContextService/AnalyzeDocument"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, eng *engine.Engine, db *sql.DB) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	// Health checks (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"context-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	authCfg := middleware.AuthConfig{
		Enabled: cfg.Auth.Enabled,
		APIKey:  cfg.Auth.APIKey,
	}

	siteHandler := handlers.NewSiteHandler(logger, eng.Repositories().Sites)
	documentHandler := handlers.NewDocumentHandler(logger, eng)
	contextHandler := handlers.NewContextHandler(logger, eng)

	// REST routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Route("/sites", func(r chi.Router) {
			r.Post("/", siteHandler.Create)
			r.Get("/", siteHandler.List)

			r.Route("/{siteId}", func(r chi.Router) {
				r.Get("/", siteHandler.Get)
				r.Post("/reindex", documentHandler.Reindex)
				r.Get("/audit", documentHandler.Audit)

				r.Route("/documents", func(r chi.Router) {
					r.Post("/", documentHandler.Create)
					r.Get("/", documentHandler.List)
					r.Get("/stale", documentHandler.Stale)

					r.Route("/{documentId}", func(r chi.Router) {
						r.Get("/", documentHandler.Get)
						r.Put("/", documentHandler.Update)
						r.Delete("/", documentHandler.Delete)
						r.Post("/reanalyze", documentHandler.Reanalyze)
					})
				})

				r.Route("/context", func(r chi.Router) {
					r.Post("/query", contextHandler.Query)
				})
			})
		})
	})

	// Connect RPC routes for server-to-server callers
	contextService := rpc.NewContextService(logger, eng)
	r.Route("/rpc", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Handle(procQueryContext, connect.NewUnaryHandler(procQueryContext, contextService.QueryContext))
		r.Handle(procAnalyzeDocument, connect.NewUnaryHandler(procAnalyzeDocument, contextService.AnalyzeDocument))
	})

	return r
}
