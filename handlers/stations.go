// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"slices"

	"github.com/tallyops/conteo/aggregate"
	"github.com/tallyops/conteo/catalog"
	"github.com/tallyops/conteo/middleware"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/tally"
)

type StationHandler struct {
	catalog  *catalog.Catalog
	registry *registry.Registry
	tallies  *tally.Store
}

func NewStationHandler(c *catalog.Catalog, r *registry.Registry, t *tally.Store) *StationHandler {
	return &StationHandler{catalog: c, registry: r, tallies: t}
}

// ListStations handles GET /stations
// Filters: department, q (code/name/municipality substring), status.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	query := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")

	stations := h.catalog.Filter(department, query)
	summaries := make([]models.StationSummary, 0, len(stations))

	for _, station := range stations {
		snapshot, _ := h.tallies.Snapshot(station.Code)
		state := aggregate.CompletionState(station, snapshot)
		if status != "" && status != state {
			continue
		}

		totals := h.tallies.ComputeTotals(station.Code)
		summary := models.StationSummary{
			Station:    station,
			State:      state,
			TotalVotes: aggregate.TotalVotes(totals),
		}
		if candidates, err := h.registry.Lookup(station.Location()); err == nil {
			if leader, ok := aggregate.LeadingParty(totals, candidates); ok {
				summary.LeadingParty = leader
			}
		}
		summaries = append(summaries, summary)
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// GetStation handles GET /stations/{code}
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	station, ok := h.catalog.Get(r.PathValue("code"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown station code")
		return
	}

	snapshot, _ := h.tallies.Snapshot(station.Code)

	detail := models.StationDetail{
		Station: station,
		State:   aggregate.CompletionState(station, snapshot),
		Tables:  []models.TableView{},
		Totals:  h.tallies.ComputeTotals(station.Code),
		Unsaved: h.tallies.HasUnsaved(station.Code),
	}

	if snapshot != nil {
		numbers := make([]int, 0, len(snapshot.Tables))
		for n := range snapshot.Tables {
			numbers = append(numbers, n)
		}
		slices.Sort(numbers)
		for _, n := range numbers {
			entry := snapshot.Tables[n]
			detail.Tables = append(detail.Tables, models.TableView{
				Number: n,
				Votes:  entry.Votes,
				Photos: entry.Photos,
			})
		}
	}

	if candidates, err := h.registry.Lookup(station.Location()); err == nil {
		detail.Configured = true
		detail.Candidates = candidates
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// GetResults handles GET /stations/{code}/results
func (h *StationHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	station, ok := h.catalog.Get(r.PathValue("code"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown station code")
		return
	}

	totals := h.tallies.ComputeTotals(station.Code)
	results := models.StationResults{
		Code:        station.Code,
		Totals:      totals,
		Percentages: aggregate.PercentageBreakdown(totals),
		TotalVotes:  aggregate.TotalVotes(totals),
	}
	if candidates, err := h.registry.Lookup(station.Location()); err == nil {
		if leader, ok := aggregate.LeadingParty(totals, candidates); ok {
			results.LeadingParty = leader
		}
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetStats handles GET /stats
func (h *StationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := aggregate.Progress(h.catalog.All(), h.tallies.Snapshot)
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// GetDepartments handles GET /departments
func (h *StationHandler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.catalog.Departments())
}
