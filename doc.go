// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Conteo API server.

Conteo is the backend of an electoral tally-sheet collection system: field
volunteers enter per-table vote counts and tally-sheet photos for each
polling station through a map front-end, and the server reconciles those
entries with rows persisted in a shared spreadsheet and a cloud file store.

# Starting the Server

The server reads configuration from CLI flags, environment variables, or a
.env file:

	go run . -p 3318 --stations data/stations.csv --spreadsheet <sheet-id>

Or against a SQL backend instead of Google Sheets:

	go run . --backend sql -d "file:conteo.db" -t sqlite

# Configuration

Required settings:

  - STATIONS_FILE (--stations): CSV of polling stations
  - With --backend sheets: SPREADSHEET_ID, DRIVE_FOLDER_ID
  - With --backend sql: DATABASE_URL (-d), DATABASE_TYPE (-t)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - TOKEN_FILE (--token-file): bearer token cache (default: .conteo-token)
  - UPLOAD_DIR (--upload-dir): photo directory for the sql backend

# Architecture

The server uses a handler-based architecture with dependency injection:

  - catalog: static polling-station reference data
  - registry: per-location candidate lists
  - tally: in-memory vote/photo state and remote reconciliation
  - aggregate: completion state, totals, leading party
  - store: tabular-store and blob-store collaborators (Sheets/Drive or SQL/dir)
  - auth: bearer-token session cache and validation probe
  - handlers, router, middleware: the HTTP surface for the map front-end
  - models, cliparse, db, testutil: shared types, config, schema, test helpers

See package documentation for each component.
*/
package main
