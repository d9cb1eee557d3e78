// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultSheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// Sheets reads and appends rows of a Google Sheets spreadsheet through the
// values REST endpoints. It implements TabularStore.
type Sheets struct {
	spreadsheetID string
	baseURL       string
	tokens        TokenSource
	client        *http.Client
}

// SheetsOption customizes a Sheets store.
type SheetsOption func(*Sheets)

// WithSheetsBaseURL overrides the API base URL. Used in tests.
func WithSheetsBaseURL(u string) SheetsOption {
	return func(s *Sheets) { s.baseURL = u }
}

// WithSheetsClient overrides the HTTP client.
func WithSheetsClient(c *http.Client) SheetsOption {
	return func(s *Sheets) { s.client = c }
}

func NewSheets(spreadsheetID string, tokens TokenSource, opts ...SheetsOption) *Sheets {
	s := &Sheets{
		spreadsheetID: spreadsheetID,
		baseURL:       defaultSheetsBaseURL,
		tokens:        tokens,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadTable fetches the whole sheet and returns its data rows keyed by the
// lower-cased header row. An empty or header-only sheet reads as no rows.
func (s *Sheets) ReadTable(ctx context.Context, name string) ([]Row, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", s.baseURL, s.spreadsheetID, url.PathEscape(name))

	body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RemoteError{Op: "read", Name: name, Err: err}
	}

	var payload struct {
		Values [][]string `json:"values"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &RemoteError{Op: "read", Name: name, Err: err}
	}

	return RowsFromValues(payload.Values), nil
}

// AppendRows appends positional value tuples after the last data row.
func (s *Sheets) AppendRows(ctx context.Context, name string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED",
		s.baseURL, s.spreadsheetID, url.PathEscape(name+"!A:Z"))

	payload, err := json.Marshal(map[string]any{"values": rows})
	if err != nil {
		return &RemoteError{Op: "append", Name: name, Err: err}
	}

	if _, err := s.do(ctx, http.MethodPost, endpoint, payload); err != nil {
		return &RemoteError{Op: "append", Name: name, Err: err}
	}
	return nil
}

func (s *Sheets) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(data, 200))
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
