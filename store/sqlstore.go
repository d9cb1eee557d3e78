// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tallyops/conteo/db"
	"github.com/tallyops/conteo/models"
)

// SQL is a TabularStore backed by a relational database instead of the
// shared spreadsheet, for deployments without Google access and for
// integration tests. Rows are append-only, like the spreadsheet.
type SQL struct {
	conn    *sql.DB
	dialect string
}

// NewSQL wraps an open connection and ensures the schema exists.
// Dialect is "sqlite" or "postgres".
func NewSQL(conn *sql.DB, dialect string) (*SQL, error) {
	if err := db.CreateSchema(conn, dialect); err != nil {
		return nil, err
	}
	return &SQL{conn: conn, dialect: dialect}, nil
}

// ReadTable returns all rows of the named sheet in append order, keyed by
// the sheet's fixed header row.
func (s *SQL) ReadTable(ctx context.Context, name string) ([]Row, error) {
	headers := models.SheetHeaders(name)
	if headers == nil {
		return nil, &RemoteError{Op: "read", Name: name, Err: fmt.Errorf("unknown sheet")}
	}

	rows, err := s.conn.QueryContext(ctx,
		s.rebind("SELECT cells FROM sheet_row WHERE sheet = ? ORDER BY id"), name)
	if err != nil {
		return nil, &RemoteError{Op: "read", Name: name, Err: err}
	}
	defer rows.Close()

	grid := [][]string{headers}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, &RemoteError{Op: "read", Name: name, Err: err}
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, &RemoteError{Op: "read", Name: name, Err: err}
		}
		grid = append(grid, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, &RemoteError{Op: "read", Name: name, Err: err}
	}

	return RowsFromValues(grid), nil
}

// AppendRows inserts the tuples in order within one transaction.
func (s *SQL) AppendRows(ctx context.Context, name string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	if models.SheetHeaders(name) == nil {
		return &RemoteError{Op: "append", Name: name, Err: fmt.Errorf("unknown sheet")}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &RemoteError{Op: "append", Name: name, Err: err}
	}
	defer tx.Rollback()

	stmt := s.rebind("INSERT INTO sheet_row (sheet, cells) VALUES (?, ?)")
	for _, cells := range rows {
		raw, err := json.Marshal(cells)
		if err != nil {
			return &RemoteError{Op: "append", Name: name, Err: err}
		}
		if _, err := tx.ExecContext(ctx, stmt, name, string(raw)); err != nil {
			return &RemoteError{Op: "append", Name: name, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &RemoteError{Op: "append", Name: name, Err: err}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	out := make([]byte, 0, len(query)+4)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
