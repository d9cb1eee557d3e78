// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when the remote store rejects the bearer
// token. Callers clear the cached session and force a reconnect.
var ErrUnauthorized = errors.New("remote store rejected credentials")

// RemoteError wraps a failed read, append, or upload against a collaborator.
type RemoteError struct {
	Op   string // "read", "append", "upload"
	Name string // sheet name or blob name
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Row is one record of a sheet, keyed by lower-cased trimmed header.
type Row map[string]string

// Get returns the trimmed cell under the given header, or "".
func (r Row) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// TabularStore is the spreadsheet collaborator: ordered reads of whole
// sheets and bulk positional appends. Corrections are additional rows;
// there is no update-in-place.
type TabularStore interface {
	ReadTable(ctx context.Context, name string) ([]Row, error)
	AppendRows(ctx context.Context, name string, rows [][]string) error
}

// BlobMetadata describes an uploaded file.
type BlobMetadata struct {
	Name         string
	MIMEType     string
	ParentFolder string
}

// BlobStore is the file-storage collaborator. Upload returns a publicly
// reachable URL for the stored bytes.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, meta BlobMetadata) (string, error)
}

// TokenSource supplies the bearer token for the Google-backed stores.
type TokenSource interface {
	Token() (string, error)
}

// RowsFromValues converts a raw value grid into header-keyed rows. The
// first row is the header, lower-cased and trimmed; short data rows read
// as empty cells.
func RowsFromValues(values [][]string) []Row {
	if len(values) < 2 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, rec := range values[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
