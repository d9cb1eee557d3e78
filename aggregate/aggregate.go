// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package aggregate derives per-station views from tally state: the
// completion state shown on the map, vote totals, the leading party,
// and percentage breakdowns. All functions are pure.
package aggregate

import (
	"strconv"

	"github.com/tallyops/conteo/models"
)

// CompletionState derives a station's fill status from how many of its
// tables have at least one recorded vote. Photos alone do not make a
// table count: the vote representation is sparse, so a table whose every
// party got zero votes carries no entries and reads as unvisited.
func CompletionState(station models.Station, tally *models.StationTally) string {
	if tally == nil {
		return models.StatePending
	}

	filled := 0
	for _, entry := range tally.Tables {
		if len(entry.Votes) > 0 {
			filled++
		}
	}

	total := station.TableCount
	if total < 1 {
		total = 1
	}

	switch {
	case filled >= total:
		return models.StateCompleted
	case filled > 0:
		return models.StatePartial
	default:
		return models.StatePending
	}
}

// LeadingParty returns the party with the strictly greatest total among
// those present on the location's ballot. Ties break on the lowest party
// code, so the result is deterministic. Returns false when totals are
// empty or no total belongs to a listed candidate.
func LeadingParty(totals map[string]int, candidates []models.Candidate) (string, bool) {
	listed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		listed[c.PartyCode] = true
	}

	leader := ""
	best := 0
	for party, votes := range totals {
		if !listed[party] || votes <= 0 {
			continue
		}
		if votes > best || (votes == best && (leader == "" || party < leader)) {
			leader = party
			best = votes
		}
	}

	return leader, leader != ""
}

// TotalVotes sums all party totals.
func TotalVotes(totals map[string]int) int {
	sum := 0
	for _, votes := range totals {
		sum += votes
	}
	return sum
}

// PercentageBreakdown returns each party's share of the total as a
// string with two decimals, matching the spreadsheet column format.
// A zero total yields "0.00" for every party.
func PercentageBreakdown(totals map[string]int) map[string]string {
	out := make(map[string]string, len(totals))
	sum := TotalVotes(totals)

	for party, votes := range totals {
		if sum == 0 {
			out[party] = "0.00"
			continue
		}
		out[party] = strconv.FormatFloat(float64(votes)/float64(sum)*100, 'f', 2, 64)
	}
	return out
}

// Progress counts stations by completion state for the header pills.
type TallyLookup func(code string) (*models.StationTally, bool)

func Progress(stations []models.Station, lookup TallyLookup) models.ProgressStats {
	var stats models.ProgressStats
	stats.Total = len(stations)

	for _, station := range stations {
		tally, _ := lookup(station.Code)
		switch CompletionState(station, tally) {
		case models.StateCompleted:
			stats.Completed++
		case models.StatePartial:
			stats.Partial++
		default:
			stats.Pending++
		}
	}
	return stats
}
