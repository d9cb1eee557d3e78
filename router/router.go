// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/catalog"
	"github.com/tallyops/conteo/cliparse"
	"github.com/tallyops/conteo/handlers"
	"github.com/tallyops/conteo/middleware"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/store"
	"github.com/tallyops/conteo/tally"
)

func NewRouter(cat *catalog.Catalog, reg *registry.Registry, tallies *tally.Store,
	tabular store.TabularStore, blobs store.BlobStore, session *auth.Session, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	stationHandler := handlers.NewStationHandler(cat, reg, tallies)
	tallyHandler := handlers.NewTallyHandler(cat, reg, tallies, tabular, blobs, session, cfg)
	candidateHandler := handlers.NewCandidateHandler(reg, tabular, session)
	sessionHandler := handlers.NewSessionHandler(session, reg, tallies, tabular)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Station map and results (read-only)
	mux.HandleFunc("GET /stations", middleware.WithLogging(stationHandler.ListStations))
	mux.HandleFunc("GET /stations/{code}", middleware.WithLogging(stationHandler.GetStation))
	mux.HandleFunc("GET /stations/{code}/results", middleware.WithLogging(stationHandler.GetResults))
	mux.HandleFunc("GET /stats", middleware.WithLogging(stationHandler.GetStats))
	mux.HandleFunc("GET /departments", middleware.WithLogging(stationHandler.GetDepartments))

	// Tally entry (requires a connected session)
	mux.HandleFunc("PUT /stations/{code}/tables/{table}/votes", middleware.WithLogging(tallyHandler.RecordVote))
	mux.HandleFunc("POST /stations/{code}/tables/{table}/photos", middleware.WithLogging(tallyHandler.AddPhoto))
	mux.HandleFunc("DELETE /stations/{code}/tables/{table}/photos/{index}", middleware.WithLogging(tallyHandler.DeletePhoto))
	mux.HandleFunc("POST /stations/{code}/save", middleware.WithLogging(tallyHandler.Save))

	// Candidate groups
	mux.HandleFunc("GET /candidates", middleware.WithLogging(candidateHandler.List))
	mux.HandleFunc("POST /candidates", middleware.WithLogging(candidateHandler.Add))

	// Session lifecycle
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.Status))
	mux.HandleFunc("POST /session/token", middleware.WithLogging(sessionHandler.Connect))
	mux.HandleFunc("POST /session/reload", middleware.WithLogging(sessionHandler.Reload))
	mux.HandleFunc("DELETE /session", middleware.WithLogging(sessionHandler.Disconnect))

	// Locally stored photos (sql backend)
	if cfg.Backend == cliparse.BackendSQL && cfg.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("conteo API v1"))
	})

	return mux
}
