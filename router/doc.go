// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Conteo API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(cat, reg, tallies, tabular, blobs, session, cfg)

# Endpoints

Health:

	GET /health

Station map and results (public):

	GET /stations                - Summaries with filters (department, status, q)
	GET /stations/{code}         - Detail with tables, totals, candidates
	GET /stations/{code}/results - Totals, percentages, leading party
	GET /stats                   - Progress counts
	GET /departments             - Department filter values

Tally entry (requires a connected session):

	PUT    /stations/{code}/tables/{table}/votes          - Record a vote count
	POST   /stations/{code}/tables/{table}/photos         - Upload tally-sheet photos
	DELETE /stations/{code}/tables/{table}/photos/{index} - Remove a photo
	POST   /stations/{code}/save                          - Flush to the tabular store

Candidate groups:

	GET  /candidates - Lookup by department/province/municipality
	POST /candidates - Register a candidate (connected session)

Session lifecycle:

	GET    /session        - Connection status
	POST   /session/token  - Connect with a bearer token
	POST   /session/reload - Re-pull candidates and tally rows
	DELETE /session        - Clear the cached token

With the sql backend, GET /uploads/ serves locally stored photos.

# Handler Initialization

The router creates handler instances with dependency injection:

	stationHandler := handlers.NewStationHandler(cat, reg, tallies)
	tallyHandler := handlers.NewTallyHandler(cat, reg, tallies, tabular, blobs, session, cfg)
	candidateHandler := handlers.NewCandidateHandler(reg, tabular, session)
	sessionHandler := handlers.NewSessionHandler(session, reg, tallies, tabular)
*/
package router
