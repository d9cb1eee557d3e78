// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides in-memory store fakes and fixture helpers
// shared by handler and router tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/catalog"
	"github.com/tallyops/conteo/cliparse"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/store"
)

// StationsCSV is a small fixture catalog: two La Paz stations (one with
// two tables) and one Cochabamba station.
const StationsCSV = `codigo,nombre,departamento,provincia,municipio,latitud,longitud,mesas
4801,Colegio Ayacucho,La Paz,Murillo,La Paz,-16.4957,-68.1335,2
4802,Escuela Bolivia,La Paz,Murillo,El Alto,-16.5041,-68.1924,1
7701,U.E. Litoral,Cochabamba,Cercado,Cochabamba,-17.3895,-66.1568,1
`

// LoadTestCatalog parses StationsCSV.
func LoadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(strings.NewReader(StationsCSV))
	if err != nil {
		t.Fatalf("Failed to load test catalog: %v", err)
	}
	return c
}

// CandidateRows returns candidate sheet rows configuring the La Paz /
// Murillo / La Paz location with three parties.
func CandidateRows() []store.Row {
	mk := func(party, name, color, order string) store.Row {
		return store.Row{
			"departamento": "La Paz",
			"provincia":    "Murillo",
			"municipio":    "La Paz",
			"partido":      party,
			"candidato":    name,
			"color":        color,
			"orden":        order,
		}
	}
	return []store.Row{
		mk("MAS-IPSP", "Candidato Azul", "#143A83", "1"),
		mk("CC", "Candidato Naranja", "#F4772D", "2"),
		mk("IH", "Candidato Verde", "#2E7D32", "3"),
	}
}

// FakeTabularStore is an in-memory TabularStore. Reads serve seeded
// plus appended rows under the fixed sheet headers; appends are
// recorded for assertions. Per-sheet failures can be injected.
type FakeTabularStore struct {
	mu       sync.Mutex
	rows     map[string][][]string
	appended map[string][][]string
	fail     map[string]error
}

func NewFakeTabularStore() *FakeTabularStore {
	return &FakeTabularStore{
		rows:     make(map[string][][]string),
		appended: make(map[string][][]string),
		fail:     make(map[string]error),
	}
}

// Seed replaces the sheet's data rows (positional, no header).
func (f *FakeTabularStore) Seed(sheet string, rows [][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[sheet] = rows
}

// FailSheet makes every operation against the sheet return err.
func (f *FakeTabularStore) FailSheet(sheet string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[sheet] = err
}

func (f *FakeTabularStore) ReadTable(_ context.Context, name string) ([]store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail[name]; err != nil {
		return nil, err
	}
	headers := models.SheetHeaders(name)
	if headers == nil {
		return nil, &store.RemoteError{Op: "read", Name: name, Err: fmt.Errorf("unknown sheet")}
	}

	values := [][]string{headers}
	values = append(values, f.rows[name]...)
	return store.RowsFromValues(values), nil
}

func (f *FakeTabularStore) AppendRows(_ context.Context, name string, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail[name]; err != nil {
		return err
	}
	f.rows[name] = append(f.rows[name], rows...)
	f.appended[name] = append(f.appended[name], rows...)
	return nil
}

// Appended returns the rows appended to the sheet since construction.
func (f *FakeTabularStore) Appended(sheet string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.appended[sheet]))
	copy(out, f.appended[sheet])
	return out
}

// FakeBlobStore is an in-memory BlobStore returning synthetic URLs.
type FakeBlobStore struct {
	mu      sync.Mutex
	uploads []store.BlobMetadata
	err     error
}

func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{}
}

// Fail makes every Upload return err.
func (f *FakeBlobStore) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeBlobStore) Upload(_ context.Context, _ []byte, meta store.BlobMetadata) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, meta)
	return fmt.Sprintf("https://blob.test/%d", len(f.uploads)), nil
}

// Uploads returns the metadata of every successful upload.
func (f *FakeBlobStore) Uploads() []store.BlobMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.BlobMetadata, len(f.uploads))
	copy(out, f.uploads)
	return out
}

// TestEmail is the identity returned by NewConnectedSession's probe.
const TestEmail = "editor@conteo.test"

// NewConnectedSession returns a session already connected against a
// local validation probe. The probe server and token cache file are
// cleaned up with the test.
func NewConnectedSession(t *testing.T) *auth.Session {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audience":"test"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"email": TestEmail})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	session := auth.NewSession(
		filepath.Join(t.TempDir(), "token"),
		auth.WithProbeURLs(srv.URL+"/tokeninfo", srv.URL+"/userinfo"),
	)
	if _, err := session.Connect(context.Background(), "test-token"); err != nil {
		t.Fatalf("Failed to connect test session: %v", err)
	}
	return session
}

// NewDisconnectedSession returns a session with no cached token.
func NewDisconnectedSession(t *testing.T) *auth.Session {
	t.Helper()
	return auth.NewSession(filepath.Join(t.TempDir(), "token"))
}

// GetTestConfig returns a standard test configuration.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		Backend:       cliparse.BackendSheets,
		SpreadsheetID: "test-spreadsheet",
		DriveFolderID: "test-folder",
		StationsFile:  "stations.csv",
		TokenFile:     ".conteo-token",
	}
}

// DecodeJSON decodes a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}
