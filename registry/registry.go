// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/store"
)

// ErrNotConfigured means a location has no candidate group at all. This
// is distinct from an empty list and blocks vote entry for its stations.
var ErrNotConfigured = errors.New("no candidates configured for this location")

var colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Registry maps administrative locations to their ordered candidate
// lists. Built from the candidates sheet; safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	groups map[models.LocationKey][]models.Candidate
}

// New returns an empty registry with no configured locations.
func New() *Registry {
	return &Registry{groups: make(map[models.LocationKey][]models.Candidate)}
}

// Load reads the candidates sheet and builds a registry from it.
func Load(ctx context.Context, tabular store.TabularStore) (*Registry, error) {
	rows, err := tabular.ReadTable(ctx, models.SheetCandidates)
	if err != nil {
		return nil, err
	}
	r := New()
	r.Rebuild(rows)
	return r, nil
}

// Rebuild replaces all groups from raw sheet rows. Rows missing any of
// the location key fields or the party code are skipped with a warning;
// a bad build never aborts, it only loses the bad rows.
func (r *Registry) Rebuild(rows []store.Row) {
	groups := make(map[models.LocationKey][]models.Candidate)
	skipped := 0

	for i, row := range rows {
		key := models.LocationKey{
			Department:   row.Get("departamento"),
			Province:     row.Get("provincia"),
			Municipality: row.Get("municipio"),
		}
		party := row.Get("partido")

		if key.Department == "" || key.Province == "" || key.Municipality == "" || party == "" {
			slog.Warn("candidate row missing key fields, skipping", "row", i+2, "party", party)
			skipped++
			continue
		}

		name := row.Get("candidato")
		if name == "" {
			name = party
		}

		color := normalizeColor(row.Get("color"))
		if color == "" {
			color = models.DefaultColor
		}

		order, err := strconv.Atoi(row.Get("orden"))
		if err != nil {
			order = models.DefaultSortOrder
		}

		groups[key] = append(groups[key], models.Candidate{
			PartyCode:   party,
			DisplayName: name,
			ColorHex:    color,
			SortOrder:   order,
		})
	}

	// Input order breaks sort-order ties.
	for key := range groups {
		slices.SortStableFunc(groups[key], func(a, b models.Candidate) int {
			return a.SortOrder - b.SortOrder
		})
	}

	r.mu.Lock()
	r.groups = groups
	r.mu.Unlock()

	slog.Info("candidate registry built", "locations", len(groups), "skipped_rows", skipped)
}

// Lookup returns the candidate list for a location, or ErrNotConfigured
// when the location has no group.
func (r *Registry) Lookup(key models.LocationKey) ([]models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[key]
	if !ok {
		return nil, ErrNotConfigured
	}
	return slices.Clone(group), nil
}

// Configured reports whether the location has a candidate group.
func (r *Registry) Configured(key models.LocationKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[key]
	return ok
}

// Locations returns the number of configured locations.
func (r *Registry) Locations() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// Add validates and inserts a candidate, then appends the row to the
// candidates sheet. The in-memory insert happens first and is never
// rolled back: a failed remote append is surfaced to the caller while
// the registry keeps the new entry until the next rebuild.
func (r *Registry) Add(ctx context.Context, tabular store.TabularStore, req models.AddCandidateRequest) error {
	key := models.LocationKey{
		Department:   strings.TrimSpace(req.Department),
		Province:     strings.TrimSpace(req.Province),
		Municipality: strings.TrimSpace(req.Municipality),
	}
	party := strings.TrimSpace(req.PartyCode)

	if key.Department == "" || key.Province == "" || key.Municipality == "" {
		return fmt.Errorf("department, province, and municipality are required")
	}
	if party == "" {
		return fmt.Errorf("party_code is required")
	}
	color := normalizeColor(req.ColorHex)
	if color == "" {
		return fmt.Errorf("color_hex must be a 6-digit hex color")
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = party
	}
	order := req.SortOrder
	if order <= 0 {
		order = models.DefaultSortOrder
	}

	candidate := models.Candidate{
		PartyCode:   party,
		DisplayName: name,
		ColorHex:    color,
		SortOrder:   order,
	}

	r.mu.Lock()
	r.groups[key] = append(r.groups[key], candidate)
	slices.SortStableFunc(r.groups[key], func(a, b models.Candidate) int {
		return a.SortOrder - b.SortOrder
	})
	r.mu.Unlock()

	row := []string{
		key.Department,
		key.Province,
		key.Municipality,
		party,
		name,
		strings.TrimSpace(req.Role),
		color,
		strconv.Itoa(order),
	}
	if err := tabular.AppendRows(ctx, models.SheetCandidates, [][]string{row}); err != nil {
		return fmt.Errorf("candidate stored locally but remote append failed: %w", err)
	}

	slog.Info("candidate added", "party", party, "municipality", key.Municipality)
	return nil
}

// normalizeColor returns the #-prefixed color, or "" when invalid.
func normalizeColor(c string) string {
	c = strings.TrimSpace(c)
	if !colorPattern.MatchString(c) {
		return ""
	}
	return "#" + strings.TrimPrefix(c, "#")
}
