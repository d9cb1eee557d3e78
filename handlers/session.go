// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/middleware"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/store"
	"github.com/tallyops/conteo/tally"
)

type SessionHandler struct {
	session  *auth.Session
	registry *registry.Registry
	tallies  *tally.Store
	tabular  store.TabularStore
}

func NewSessionHandler(session *auth.Session, reg *registry.Registry,
	t *tally.Store, tabular store.TabularStore) *SessionHandler {
	return &SessionHandler{
		session:  session,
		registry: reg,
		tallies:  t,
		tabular:  tabular,
	}
}

// Status handles GET /session
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.SessionStatus{
		Connected: h.session.Connected(),
		Email:     h.session.Email(),
	})
}

// Connect handles POST /session/token
// Validates the token, caches it, then pulls candidates and tally rows
// so the map reflects what the collaborators already hold.
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req models.SetTokenRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token is required")
		return
	}

	email, err := h.session.Connect(r.Context(), req.Token)
	if errors.Is(err, auth.ErrTokenExpired) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Token rejected by the validation probe")
		return
	}
	if err != nil {
		slog.Error("session connect failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Token validation unreachable")
		return
	}

	// A failed pull degrades to an empty board, not a failed connect;
	// the client can retry with POST /session/reload.
	if err := h.reload(r.Context()); err != nil {
		slog.Warn("initial data pull failed after connect", "error", err)
	}

	h.appendEvent(r.Context(), models.EventConnect, email, "")
	slog.Info("session connected", "email", email)

	middleware.JSONResponse(w, http.StatusOK, models.SessionStatus{Connected: true, Email: email})
}

// Reload handles POST /session/reload
// Re-reads candidates and tally rows. Stations with unsaved local
// edits keep their local state.
func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEditor(w, h.session); !ok {
		return
	}

	if err := h.reload(r.Context()); err != nil {
		remoteFailure(w, h.session, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionStatus{
		Connected: h.session.Connected(),
		Email:     h.session.Email(),
	})
}

// Disconnect handles DELETE /session
// Clears the cached token. In-memory tallies are retained, so a
// reconnect can still flush unsaved work.
func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if h.session.Connected() {
		h.appendEvent(r.Context(), models.EventDisconnect, h.session.Email(), "")
	}
	h.session.Disconnect()
	slog.Info("session disconnected")

	middleware.JSONResponse(w, http.StatusOK, models.SessionStatus{Connected: false})
}

// reload re-reads the candidates sheet and the tally rows.
func (h *SessionHandler) reload(ctx context.Context) error {
	rows, err := h.tabular.ReadTable(ctx, models.SheetCandidates)
	if err != nil {
		return err
	}
	h.registry.Rebuild(rows)
	return h.tallies.Load(ctx, h.tabular)
}

// appendEvent writes a session audit row. Best effort; failures only
// lose the log line.
func (h *SessionHandler) appendEvent(ctx context.Context, event, actor, detail string) {
	timestamp := time.Now().Format(models.TimestampLayout)
	row := tally.BuildLogRow(timestamp, "", event, actor, detail)
	if err := h.tabular.AppendRows(ctx, models.SheetLog, [][]string{row}); err != nil {
		slog.Warn("failed to append session audit row", "event", event, "error", err)
	}
}
