// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/middleware"
	"github.com/tallyops/conteo/store"
)

// requireEditor rejects the request with 401 unless a validated session
// is held, and returns the editor's email for audit rows.
func requireEditor(w http.ResponseWriter, session *auth.Session) (string, bool) {
	if !session.Connected() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active session; connect a token first")
		return "", false
	}
	return session.Email(), true
}

// remoteFailure maps a store error to the HTTP response. A rejected
// token invalidates the session (401, reconnect required); anything
// else is a 502 with in-memory state untouched.
func remoteFailure(w http.ResponseWriter, session *auth.Session, err error) {
	if errors.Is(err, store.ErrUnauthorized) {
		session.Invalidate()
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Session expired; reconnect")
		return
	}
	middleware.ErrorResponse(w, http.StatusBadGateway, "Remote store unavailable; local data kept")
}

// tableFromPath parses the {table} path value and checks it against the
// station's table count. Returns 0 and writes the error response when
// out of bounds.
func tableFromPath(w http.ResponseWriter, r *http.Request, tableCount int) (int, bool) {
	table, err := strconv.Atoi(r.PathValue("table"))
	if err != nil || table < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "table must be a positive integer")
		return 0, false
	}
	if tableCount < 1 {
		tableCount = 1
	}
	if table > tableCount {
		middleware.ErrorResponse(w, http.StatusBadRequest, "table number exceeds the station's table count")
		return 0, false
	}
	return table, true
}
