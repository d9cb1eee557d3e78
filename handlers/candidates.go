// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/middleware"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/store"
)

type CandidateHandler struct {
	registry *registry.Registry
	tabular  store.TabularStore
	session  *auth.Session
}

func NewCandidateHandler(reg *registry.Registry, tabular store.TabularStore, session *auth.Session) *CandidateHandler {
	return &CandidateHandler{registry: reg, tabular: tabular, session: session}
}

// List handles GET /candidates?department&province&municipality
// An unconfigured location answers 200 with configured:false rather
// than an error; the caller decides whether that blocks entry.
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	key := models.LocationKey{
		Department:   r.URL.Query().Get("department"),
		Province:     r.URL.Query().Get("province"),
		Municipality: r.URL.Query().Get("municipality"),
	}
	if key.Department == "" || key.Province == "" || key.Municipality == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "department, province, and municipality are required")
		return
	}

	resp := models.CandidateListResponse{
		Location:   key,
		Candidates: []models.Candidate{},
	}
	if candidates, err := h.registry.Lookup(key); err == nil {
		resp.Configured = true
		resp.Candidates = candidates
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Add handles POST /candidates
func (h *CandidateHandler) Add(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEditor(w, h.session); !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.registry.Add(r.Context(), h.tabular, req)
	if err == nil {
		key := models.LocationKey{
			Department:   req.Department,
			Province:     req.Province,
			Municipality: req.Municipality,
		}
		candidates, _ := h.registry.Lookup(key)
		middleware.JSONResponse(w, http.StatusCreated, models.CandidateListResponse{
			Location:   key,
			Configured: true,
			Candidates: candidates,
		})
		return
	}

	var remote *store.RemoteError
	if errors.Is(err, store.ErrUnauthorized) || errors.As(err, &remote) {
		remoteFailure(w, h.session, err)
		return
	}
	middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
}
