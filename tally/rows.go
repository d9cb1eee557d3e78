// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/tallyops/conteo/aggregate"
	"github.com/tallyops/conteo/models"
)

// BuildResultRows builds the positional results rows for a save flush:
// one row per party with a vote total, in ballot order, parties unknown
// to the ballot last. Recomputes totals first.
//
// Row: [code, department, province, municipality, party, candidate,
// votes, percentage, timestamp].
func (s *Store) BuildResultRows(station models.Station, candidates []models.Candidate, timestamp string) [][]string {
	totals := s.ComputeTotals(station.Code)
	if len(totals) == 0 {
		return nil
	}

	percentages := aggregate.PercentageBreakdown(totals)

	names := make(map[string]string, len(candidates))
	var order []string
	for _, c := range candidates {
		names[c.PartyCode] = c.DisplayName
		if _, ok := totals[c.PartyCode]; ok {
			order = append(order, c.PartyCode)
		}
	}
	var extra []string
	for party := range totals {
		if _, ok := names[party]; !ok {
			extra = append(extra, party)
		}
	}
	slices.Sort(extra)
	order = append(order, extra...)

	rows := make([][]string, 0, len(order))
	for _, party := range order {
		name := names[party]
		if name == "" {
			name = party
		}
		rows = append(rows, []string{
			station.Code,
			station.Department,
			station.Province,
			station.Municipality,
			party,
			name,
			strconv.Itoa(totals[party]),
			percentages[party],
			timestamp,
		})
	}
	return rows
}

// BuildPhotoRows builds the positional photo rows for a save flush, in
// table order then insertion order.
//
// Row: [code, "Mesa {n}", url, timestamp, editor].
func (s *Store) BuildPhotoRows(code, editor, timestamp string) [][]string {
	tally, ok := s.Snapshot(code)
	if !ok {
		return nil
	}

	tables := make([]int, 0, len(tally.Tables))
	for table := range tally.Tables {
		tables = append(tables, table)
	}
	slices.Sort(tables)

	var rows [][]string
	for _, table := range tables {
		for _, url := range tally.Tables[table].Photos {
			rows = append(rows, []string{
				code,
				fmt.Sprintf("Mesa %d", table),
				url,
				timestamp,
				editor,
			})
		}
	}
	return rows
}

// BuildLogRow builds one audit-log row.
//
// Row: [timestamp, code, event, actor, detail].
func BuildLogRow(timestamp, code, event, actor, detail string) []string {
	return []string{timestamp, code, event, actor, detail}
}
