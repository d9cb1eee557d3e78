// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Internal data structures:

  - Station: polling place reference data (immutable after catalog load)
  - LocationKey: (department, province, municipality) candidate-group key
  - Candidate: one party entry on a location's ballot
  - TableEntry: votes and photos entered for one voting table
  - StationTally: all table entries plus the derived totals cache

# Request Types

Types for parsing incoming JSON:

  - RecordVoteRequest: party, value (raw string; non-numeric deletes)
  - AddCandidateRequest: location key fields, party, name, color, order
  - SetTokenRequest: bearer token

# Response Types

Types for JSON responses:

  - StationSummary: station plus derived state, total votes, leading party
  - StationDetail: station, tables, totals, candidate configuration
  - StationResults: totals, percentage breakdown, leading party
  - CandidateListResponse, AddPhotoResponse, SaveResponse
  - ProgressStats, SessionStatus, ErrorResponse

# Constants

Completion states:

	StatePending   = "pending"
	StatePartial   = "partial"
	StateCompleted = "completed"

Sheet names:

	SheetResults    = "Resultados"
	SheetPhotos     = "Fotos"
	SheetCandidates = "Candidatos"
	SheetLog        = "Log"

Audit events:

	EventSave, EventSavePartial, EventConnect, EventDisconnect

SheetHeaders maps each sheet name to its header row.
*/
package models
