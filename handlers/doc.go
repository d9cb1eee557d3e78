// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Conteo API.

# Handler Types

Each handler is a struct with its collaborators injected at
construction:

  - StationHandler: station listings, details, results, progress stats
  - TallyHandler: vote entry, photo upload/removal, save flush
  - CandidateHandler: per-location candidate lookup and registration
  - SessionHandler: token connect/disconnect and data reload

	stationHandler := handlers.NewStationHandler(catalog, registry, tallies)
	tallyHandler := handlers.NewTallyHandler(catalog, registry, tallies, tabular, blobs, session, cfg)

# Entry Flow

Vote entry requires a connected session and a configured candidate
group for the station's location:

	PUT  /stations/{code}/tables/{table}/votes   → RecordVote
	POST /stations/{code}/tables/{table}/photos  → AddPhoto
	POST /stations/{code}/save                   → Save

Save builds results, photo, and audit-log rows and appends them
jointly. A failed leg appends a compensating SAVE_PARTIAL audit row,
leaves the station's unsaved mark in place, and reports partial:true.

# Error Mapping

  - unknown station code → 404
  - location without a candidate group → 409
  - bad input (JSON, table bounds, blank fields) → 400
  - remote store unreachable → 502, in-memory state retained
  - token rejected by the remote store → 401, cached token cleared

# Sessions

	GET    /session        → Status
	POST   /session/token  → Connect (probe, cache, initial data pull)
	POST   /session/reload → Reload (merge; unsaved local edits win)
	DELETE /session        → Disconnect (tallies retained)
*/
package handlers
