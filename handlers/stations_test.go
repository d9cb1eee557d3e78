// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/catalog"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/tally"
	"github.com/tallyops/conteo/testutil"
)

// env wires the handlers against in-memory fakes. Station 4801 (two
// tables) sits in the configured La Paz/Murillo/La Paz location; 4802
// and 7701 have no candidate group.
type env struct {
	catalog  *catalog.Catalog
	registry *registry.Registry
	tallies  *tally.Store
	tabular  *testutil.FakeTabularStore
	blobs    *testutil.FakeBlobStore
	session  *auth.Session
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		catalog:  testutil.LoadTestCatalog(t),
		registry: registry.New(),
		tallies:  tally.NewStore(),
		tabular:  testutil.NewFakeTabularStore(),
		blobs:    testutil.NewFakeBlobStore(),
		session:  testutil.NewConnectedSession(t),
	}
	e.registry.Rebuild(testutil.CandidateRows())
	return e
}

func (e *env) stationHandler() *StationHandler {
	return NewStationHandler(e.catalog, e.registry, e.tallies)
}

func TestListStations(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "10")
	e.tallies.RecordVote("4801", 1, "MAS-IPSP", "15")
	handler := e.stationHandler()

	tests := []struct {
		name      string
		url       string
		wantCodes []string
	}{
		{"all", "/stations", []string{"4801", "4802", "7701"}},
		{"department filter", "/stations?department=La+Paz", []string{"4801", "4802"}},
		{"todos matches all", "/stations?department=Todos", []string{"4801", "4802", "7701"}},
		{"query on name", "/stations?q=litoral", []string{"7701"}},
		{"status partial", "/stations?status=partial", []string{"4801"}},
		{"status pending", "/stations?status=pending", []string{"4802", "7701"}},
		{"no match", "/stations?q=nope", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			rec := httptest.NewRecorder()
			handler.ListStations(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("Status = %d", rec.Code)
			}
			var got []models.StationSummary
			testutil.DecodeJSON(t, rec, &got)

			codes := make([]string, len(got))
			for i, s := range got {
				codes[i] = s.Code
			}
			if len(codes) != len(tt.wantCodes) {
				t.Fatalf("Codes = %v, want %v", codes, tt.wantCodes)
			}
			for i := range codes {
				if codes[i] != tt.wantCodes[i] {
					t.Fatalf("Codes = %v, want %v", codes, tt.wantCodes)
				}
			}
		})
	}
}

func TestListStationsSummaryFields(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "10")
	e.tallies.RecordVote("4801", 2, "MAS-IPSP", "15")

	req := httptest.NewRequest("GET", "/stations?q=4801", nil)
	rec := httptest.NewRecorder()
	e.stationHandler().ListStations(rec, req)

	var got []models.StationSummary
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 1 {
		t.Fatalf("Expected one summary, got %d", len(got))
	}

	s := got[0]
	if s.State != models.StateCompleted {
		t.Errorf("State = %s, want completed", s.State)
	}
	if s.TotalVotes != 25 {
		t.Errorf("TotalVotes = %d, want 25", s.TotalVotes)
	}
	if s.LeadingParty != "MAS-IPSP" {
		t.Errorf("LeadingParty = %s, want MAS-IPSP", s.LeadingParty)
	}
}

func TestGetStation(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 2, "CC", "8")
	e.tallies.AddPhoto("4801", 2, "https://blob.test/1")

	req := httptest.NewRequest("GET", "/stations/4801", nil)
	req.SetPathValue("code", "4801")
	rec := httptest.NewRecorder()
	e.stationHandler().GetStation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var got models.StationDetail
	testutil.DecodeJSON(t, rec, &got)

	if got.Station.Code != "4801" || got.State != models.StatePartial {
		t.Errorf("Station = %s, State = %s", got.Station.Code, got.State)
	}
	if !got.Configured || len(got.Candidates) != 3 {
		t.Errorf("Configured = %v, candidates = %d", got.Configured, len(got.Candidates))
	}
	if got.Candidates[0].PartyCode != "MAS-IPSP" {
		t.Errorf("Candidates not in ballot order: %v", got.Candidates)
	}
	if len(got.Tables) != 1 || got.Tables[0].Number != 2 {
		t.Fatalf("Tables = %+v", got.Tables)
	}
	if got.Tables[0].Votes["CC"] != 8 || len(got.Tables[0].Photos) != 1 {
		t.Errorf("Table 2 = %+v", got.Tables[0])
	}
	if !got.Unsaved {
		t.Error("Expected unsaved mark after edits")
	}
}

func TestGetStationUnconfigured(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("GET", "/stations/7701", nil)
	req.SetPathValue("code", "7701")
	rec := httptest.NewRecorder()
	e.stationHandler().GetStation(rec, req)

	var got models.StationDetail
	testutil.DecodeJSON(t, rec, &got)
	if got.Configured || got.Candidates != nil {
		t.Errorf("Expected unconfigured detail, got %+v", got)
	}
}

func TestGetStationNotFound(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("GET", "/stations/9999", nil)
	req.SetPathValue("code", "9999")
	rec := httptest.NewRecorder()
	e.stationHandler().GetStation(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}

func TestGetResults(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "30")
	e.tallies.RecordVote("4801", 2, "MAS-IPSP", "70")

	req := httptest.NewRequest("GET", "/stations/4801/results", nil)
	req.SetPathValue("code", "4801")
	rec := httptest.NewRecorder()
	e.stationHandler().GetResults(rec, req)

	var got models.StationResults
	testutil.DecodeJSON(t, rec, &got)

	if got.TotalVotes != 100 {
		t.Errorf("TotalVotes = %d, want 100", got.TotalVotes)
	}
	if got.Percentages["IH"] != "30.00" || got.Percentages["MAS-IPSP"] != "70.00" {
		t.Errorf("Percentages = %v", got.Percentages)
	}
	if got.LeadingParty != "MAS-IPSP" {
		t.Errorf("LeadingParty = %s", got.LeadingParty)
	}
}

func TestGetStats(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "5") // one of two tables
	e.tallies.RecordVote("4802", 1, "IH", "5") // only table

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	e.stationHandler().GetStats(rec, req)

	var got models.ProgressStats
	testutil.DecodeJSON(t, rec, &got)
	want := models.ProgressStats{Completed: 1, Partial: 1, Pending: 1, Total: 3}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestGetDepartments(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("GET", "/departments", nil)
	rec := httptest.NewRecorder()
	e.stationHandler().GetDepartments(rec, req)

	var got []string
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 2 || got[0] != "Cochabamba" || got[1] != "La Paz" {
		t.Errorf("Departments = %v", got)
	}
}
