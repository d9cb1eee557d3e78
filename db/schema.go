// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the append-only row table backing the SQL tabular
// store. Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(conn *sql.DB, dialect string) error {
	schema, err := schemaFor(dialect)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func schemaFor(dialect string) (string, error) {
	switch dialect {
	case "postgres":
		return schemaPostgres, nil
	case "sqlite":
		return schemaSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dialect)
	}
}

// Each sheet row is stored as a JSON array of cell strings, in append
// order. Sheets never update in place; corrections are additional rows.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS sheet_row (
    id SERIAL PRIMARY KEY,
    sheet TEXT NOT NULL,
    cells TEXT NOT NULL,
    appended_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sheet_row_sheet ON sheet_row(sheet);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS sheet_row (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sheet TEXT NOT NULL,
    cells TEXT NOT NULL,
    appended_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sheet_row_sheet ON sheet_row(sheet);
`
