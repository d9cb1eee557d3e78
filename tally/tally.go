// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/store"
)

var tableLabelPattern = regexp.MustCompile(`\d+`)

// Store holds the in-memory tally state for every station: per-table vote
// counts and photo URLs, plus the derived totals cache. Mutations are
// local until an explicit save flushes them as appended rows.
//
// Vote maps are sparse: a zero or non-numeric write deletes the party's
// entry, so a table visited with all-zero votes is indistinguishable from
// one never visited. Preserved source behavior; see CompletionState.
type Store struct {
	mu      sync.RWMutex
	tallies map[string]*models.StationTally
	dirty   map[string]bool
}

func NewStore() *Store {
	return &Store{
		tallies: make(map[string]*models.StationTally),
		dirty:   make(map[string]bool),
	}
}

// RecordVote records the raw value entered for a party at a table. The
// value is parsed as a non-negative integer; non-numeric or <= 0 input
// deletes the party's entry instead (absence means zero). Totals are not
// recomputed here; call ComputeTotals before reading them.
func (s *Store) RecordVote(code string, table int, party, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.ensureTable(code, table)

	votes, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || votes <= 0 {
		delete(entry.Votes, party)
		s.dropIfEmpty(code, table)
	} else {
		entry.Votes[party] = votes
	}
	s.dirty[code] = true
}

// AddPhoto appends a photo URL to the table. Order is insertion order and
// significant: removal is by position.
func (s *Store) AddPhoto(code string, table int, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.ensureTable(code, table)
	entry.Photos = append(entry.Photos, url)
	s.dirty[code] = true
}

// RemovePhoto removes the photo at the given position. A missing table or
// out-of-range index is a silent no-op.
func (s *Store) RemovePhoto(code string, table, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[code]
	if !ok {
		return
	}
	entry, ok := tally.Tables[table]
	if !ok {
		return
	}
	if index < 0 || index >= len(entry.Photos) {
		return
	}

	entry.Photos = append(entry.Photos[:index], entry.Photos[index+1:]...)
	s.dropIfEmpty(code, table)
	s.dirty[code] = true
}

// ComputeTotals sums votes across all tables of the station, writes the
// result into the totals cache, and returns it. Idempotent; callers must
// invoke it after mutations before reading totals.
func (s *Store) ComputeTotals(code string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeTotalsLocked(code)
}

func (s *Store) computeTotalsLocked(code string) map[string]int {
	tally, ok := s.tallies[code]
	if !ok {
		return map[string]int{}
	}

	totals := make(map[string]int)
	for _, entry := range tally.Tables {
		for party, votes := range entry.Votes {
			totals[party] += votes
		}
	}
	tally.Totals = totals

	out := make(map[string]int, len(totals))
	for party, votes := range totals {
		out[party] = votes
	}
	return out
}

// Snapshot returns a deep copy of the station's tally, or false if the
// station has no entries.
func (s *Store) Snapshot(code string) (*models.StationTally, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tally, ok := s.tallies[code]
	if !ok {
		return nil, false
	}
	return copyTally(tally), true
}

// HasUnsaved reports whether the station has local edits not yet flushed.
func (s *Store) HasUnsaved(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty[code]
}

// MarkSaved clears the station's unsaved-edit mark after a flush.
func (s *Store) MarkSaved(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirty, code)
}

// Load reads the results and photos sheets and reconciles them into the
// store. Stations with unsaved local edits keep their local tally.
func (s *Store) Load(ctx context.Context, tabular store.TabularStore) error {
	tallyRows, err := tabular.ReadTable(ctx, models.SheetResults)
	if err != nil {
		return err
	}
	photoRows, err := tabular.ReadTable(ctx, models.SheetPhotos)
	if err != nil {
		return err
	}
	s.Reconcile(tallyRows, photoRows)
	return nil
}

// Reconcile rebuilds the store from remote rows, then overlays local
// state: stations with unsaved edits win over the remote rows until an
// explicit save clears their mark ("local wins until flush").
//
// Tally rows without a usable table number fold into table 1 (the
// single-table legacy format). Rows repeating a station and party are
// corrections: the latest row wins, and a zero-vote correction deletes
// the entry. Photo rows parse the table number out of the free-text
// label ("Mesa 3"), defaulting to table 1.
func (s *Store) Reconcile(tallyRows, photoRows []store.Row) {
	fresh := make(map[string]*models.StationTally)

	ensure := func(code string, table int) *models.TableEntry {
		tally, ok := fresh[code]
		if !ok {
			tally = &models.StationTally{
				Tables: make(map[int]*models.TableEntry),
				Totals: make(map[string]int),
			}
			fresh[code] = tally
		}
		entry, ok := tally.Tables[table]
		if !ok {
			entry = &models.TableEntry{Votes: make(map[string]int)}
			tally.Tables[table] = entry
		}
		return entry
	}

	for _, row := range tallyRows {
		code := row.Get("codigo")
		party := row.Get("partido")
		if code == "" || party == "" {
			continue
		}

		table := 1
		if n, err := strconv.Atoi(row.Get("mesa")); err == nil && n >= 1 {
			table = n
		}

		votes, err := strconv.Atoi(row.Get("votos"))
		entry := ensure(code, table)
		if err != nil || votes <= 0 {
			// A later zero row is a correction wiping the earlier value.
			delete(entry.Votes, party)
		} else {
			entry.Votes[party] = votes
		}
	}

	for _, row := range photoRows {
		code := row.Get("codigo")
		url := row.Get("url_foto")
		if code == "" || url == "" {
			continue
		}

		table := parseTableLabel(row.Get("mesa"))
		entry := ensure(code, table)
		entry.Photos = append(entry.Photos, url)
	}

	// Drop tables the corrections emptied out entirely.
	for code, tally := range fresh {
		for table, entry := range tally.Tables {
			if len(entry.Votes) == 0 && len(entry.Photos) == 0 {
				delete(tally.Tables, table)
			}
		}
		if len(tally.Tables) == 0 {
			delete(fresh, code)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := 0
	for code := range s.dirty {
		if local, ok := s.tallies[code]; ok {
			fresh[code] = local
			kept++
		}
	}
	s.tallies = fresh
	for code := range s.tallies {
		s.computeTotalsLocked(code)
	}

	slog.Info("tally store reconciled", "stations", len(s.tallies), "local_kept", kept)
}

// Stations returns the codes that currently have a tally.
func (s *Store) Stations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.tallies))
	for code := range s.tallies {
		out = append(out, code)
	}
	return out
}

// ensureTable creates the station tally and table entry as needed.
// Callers hold the write lock.
func (s *Store) ensureTable(code string, table int) *models.TableEntry {
	tally, ok := s.tallies[code]
	if !ok {
		tally = &models.StationTally{
			Tables: make(map[int]*models.TableEntry),
			Totals: make(map[string]int),
		}
		s.tallies[code] = tally
	}
	entry, ok := tally.Tables[table]
	if !ok {
		entry = &models.TableEntry{Votes: make(map[string]int)}
		tally.Tables[table] = entry
	}
	return entry
}

// dropIfEmpty removes a table entry that holds neither votes nor photos,
// keeping the representation sparse. Callers hold the write lock.
func (s *Store) dropIfEmpty(code string, table int) {
	tally, ok := s.tallies[code]
	if !ok {
		return
	}
	entry, ok := tally.Tables[table]
	if !ok {
		return
	}
	if len(entry.Votes) == 0 && len(entry.Photos) == 0 {
		delete(tally.Tables, table)
	}
	if len(tally.Tables) == 0 {
		delete(s.tallies, code)
	}
}

func copyTally(t *models.StationTally) *models.StationTally {
	out := &models.StationTally{
		Tables: make(map[int]*models.TableEntry, len(t.Tables)),
		Totals: make(map[string]int, len(t.Totals)),
	}
	for table, entry := range t.Tables {
		votes := make(map[string]int, len(entry.Votes))
		for party, v := range entry.Votes {
			votes[party] = v
		}
		out.Tables[table] = &models.TableEntry{
			Votes:  votes,
			Photos: append([]string(nil), entry.Photos...),
		}
	}
	for party, v := range t.Totals {
		out.Totals[party] = v
	}
	return out
}

// parseTableLabel extracts the first integer in a free-text table label
// like "Mesa 3", defaulting to 1.
func parseTableLabel(label string) int {
	match := tableLabelPattern.FindString(label)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
