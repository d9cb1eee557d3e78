// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/store"
)

var laPaz = models.LocationKey{Department: "La Paz", Province: "Murillo", Municipality: "La Paz"}

func candidateRow(dep, prov, muni, party, name, color, order string) store.Row {
	return store.Row{
		"departamento": dep,
		"provincia":    prov,
		"municipio":    muni,
		"partido":      party,
		"candidato":    name,
		"cargo":        "",
		"color":        color,
		"orden":        order,
	}
}

func TestRebuildAndLookup(t *testing.T) {
	r := New()
	r.Rebuild([]store.Row{
		candidateRow("La Paz", "Murillo", "La Paz", "MAS-IPSP", "MAS-IPSP", "#1E3A8A", "2"),
		candidateRow("La Paz", "Murillo", "La Paz", "IH", " Innovación Humana ", "#8B5CF6", "1"),
		candidateRow("La Paz", "Murillo", "La Paz", "CC", "", "", "abc"),
		candidateRow("", "Murillo", "La Paz", "FPV", "Frente", "#DC2626", "5"), // no department
		candidateRow("La Paz", "Murillo", "", "FPV", "Frente", "#DC2626", "5"), // no municipality
	})

	if r.Locations() != 1 {
		t.Fatalf("Expected 1 configured location, got %d", r.Locations())
	}

	group, err := r.Lookup(laPaz)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(group) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(group))
	}

	// Sorted by orden ascending; CC got the 999 sentinel.
	if group[0].PartyCode != "IH" || group[1].PartyCode != "MAS-IPSP" || group[2].PartyCode != "CC" {
		t.Errorf("Wrong order: %s, %s, %s", group[0].PartyCode, group[1].PartyCode, group[2].PartyCode)
	}

	// Defaults: trimmed name, name falls back to party, gray color.
	if group[0].DisplayName != "Innovación Humana" {
		t.Errorf("Expected trimmed name, got %q", group[0].DisplayName)
	}
	if group[2].DisplayName != "CC" {
		t.Errorf("Expected party as name fallback, got %q", group[2].DisplayName)
	}
	if group[2].ColorHex != models.DefaultColor {
		t.Errorf("Expected default color, got %q", group[2].ColorHex)
	}
	if group[2].SortOrder != models.DefaultSortOrder {
		t.Errorf("Expected sentinel order, got %d", group[2].SortOrder)
	}
}

func TestRebuildStableTies(t *testing.T) {
	r := New()
	r.Rebuild([]store.Row{
		candidateRow("D", "P", "M", "AAA", "", "#111111", "1"),
		candidateRow("D", "P", "M", "BBB", "", "#222222", "1"),
		candidateRow("D", "P", "M", "CCC", "", "#333333", "1"),
	})

	group, err := r.Lookup(models.LocationKey{Department: "D", Province: "P", Municipality: "M"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	for i, want := range []string{"AAA", "BBB", "CCC"} {
		if group[i].PartyCode != want {
			t.Errorf("Tie break must keep input order: got %s at %d, want %s", group[i].PartyCode, i, want)
		}
	}
}

func TestLookupNotConfigured(t *testing.T) {
	r := New()
	r.Rebuild([]store.Row{
		candidateRow("La Paz", "Murillo", "La Paz", "IH", "IH", "#8B5CF6", "1"),
	})

	_, err := r.Lookup(models.LocationKey{Department: "Beni", Province: "Cercado", Municipality: "Trinidad"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

// appendRecorder records appends and optionally fails them.
type appendRecorder struct {
	appends [][]string
	fail    bool
}

func (a *appendRecorder) ReadTable(context.Context, string) ([]store.Row, error) {
	return nil, nil
}

func (a *appendRecorder) AppendRows(_ context.Context, _ string, rows [][]string) error {
	if a.fail {
		return &store.RemoteError{Op: "append", Name: models.SheetCandidates, Err: fmt.Errorf("boom")}
	}
	a.appends = append(a.appends, rows...)
	return nil
}

func TestAdd(t *testing.T) {
	r := New()
	rec := &appendRecorder{}

	err := r.Add(context.Background(), rec, models.AddCandidateRequest{
		Department:   "La Paz",
		Province:     "Murillo",
		Municipality: "La Paz",
		PartyCode:    "CREEMOS",
		DisplayName:  "CREEMOS",
		ColorHex:     "15803d",
		SortOrder:    4,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	group, err := r.Lookup(laPaz)
	if err != nil || len(group) != 1 {
		t.Fatalf("Expected new group with 1 candidate, got %v, %v", group, err)
	}
	if group[0].ColorHex != "#15803d" {
		t.Errorf("Expected normalized color #15803d, got %s", group[0].ColorHex)
	}

	if len(rec.appends) != 1 {
		t.Fatalf("Expected 1 appended row, got %d", len(rec.appends))
	}
	want := []string{"La Paz", "Murillo", "La Paz", "CREEMOS", "CREEMOS", "", "#15803d", "4"}
	for i, cell := range want {
		if rec.appends[0][i] != cell {
			t.Errorf("Row cell %d = %q, want %q", i, rec.appends[0][i], cell)
		}
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.AddCandidateRequest
	}{
		{"missing department", models.AddCandidateRequest{Province: "P", Municipality: "M", PartyCode: "X", ColorHex: "#123456"}},
		{"missing party", models.AddCandidateRequest{Department: "D", Province: "P", Municipality: "M", ColorHex: "#123456"}},
		{"bad color", models.AddCandidateRequest{Department: "D", Province: "P", Municipality: "M", PartyCode: "X", ColorHex: "#12345"}},
		{"color with junk", models.AddCandidateRequest{Department: "D", Province: "P", Municipality: "M", PartyCode: "X", ColorHex: "#123zzz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			if err := r.Add(context.Background(), &appendRecorder{}, tt.req); err == nil {
				t.Error("Expected validation error")
			}
			if r.Locations() != 0 {
				t.Error("Invalid request must not mutate the registry")
			}
		})
	}
}

func TestAddRemoteFailureKeepsLocal(t *testing.T) {
	r := New()
	rec := &appendRecorder{fail: true}

	err := r.Add(context.Background(), rec, models.AddCandidateRequest{
		Department:   "La Paz",
		Province:     "Murillo",
		Municipality: "La Paz",
		PartyCode:    "IH",
		ColorHex:     "#8B5CF6",
		SortOrder:    1,
	})
	if err == nil {
		t.Fatal("Expected remote append error")
	}

	// Accepted trade-off: the in-memory entry stays.
	if group, lookupErr := r.Lookup(laPaz); lookupErr != nil || len(group) != 1 {
		t.Errorf("Expected candidate retained in memory, got %v, %v", group, lookupErr)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	// Build then Lookup returns the same party set sorted by orden.
	rows := []store.Row{
		candidateRow("D", "P", "M", "B", "Bee", "#222222", "2"),
		candidateRow("D", "P", "M", "A", "Ay", "#111111", "1"),
		candidateRow("D", "P", "M", "C", "Sea", "#333333", "3"),
	}
	r := New()
	r.Rebuild(rows)

	group, err := r.Lookup(models.LocationKey{Department: "D", Province: "P", Municipality: "M"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	for i, want := range []string{"A", "B", "C"} {
		if group[i].PartyCode != want {
			t.Errorf("Position %d = %s, want %s", i, group[i].PartyCode, want)
		}
	}
}
