// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL tabular store.

# Schema Creation

CreateSchema initializes the single append-only table:

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - sheet_row: one spreadsheet row per record; cells holds the positional
    values as a JSON array of strings, id preserves append order.

Both sqlite and postgres dialects are supported, matching the drivers the
server ships with (modernc.org/sqlite and lib/pq).
*/
package db
