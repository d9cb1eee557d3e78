// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/tallyops/conteo/models"
)

// Catalog is the static polling-station reference data. Stations are
// immutable once loaded; lookups are by unique station code.
type Catalog struct {
	stations []models.Station
	byCode   map[string]models.Station
}

// LoadFile reads the stations CSV from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stations file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses the stations CSV. Expected headers: codigo, nombre,
// departamento, provincia, municipio, latitud, longitud, mesas.
// Malformed rows are skipped with a warning; duplicates keep the first
// occurrence.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("stations CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"codigo", "nombre", "departamento", "provincia", "municipio", "latitud", "longitud"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("stations CSV missing column %q", required)
		}
	}

	c := &Catalog{byCode: make(map[string]models.Station)}
	line := 1

	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("stations CSV read error, skipping line", "line", line, "error", err)
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		code := get("codigo")
		if code == "" {
			slog.Warn("station row without code, skipping", "line", line)
			continue
		}
		if _, dup := c.byCode[code]; dup {
			slog.Warn("duplicate station code, keeping first", "line", line, "code", code)
			continue
		}

		lat, latErr := strconv.ParseFloat(get("latitud"), 64)
		lng, lngErr := strconv.ParseFloat(get("longitud"), 64)
		if latErr != nil || lngErr != nil {
			slog.Warn("station row with bad coordinates, skipping", "line", line, "code", code)
			continue
		}

		tables, err := strconv.Atoi(get("mesas"))
		if err != nil || tables < 1 {
			tables = 1
		}

		station := models.Station{
			Code:         code,
			Name:         get("nombre"),
			Department:   get("departamento"),
			Province:     get("provincia"),
			Municipality: get("municipio"),
			Latitude:     lat,
			Longitude:    lng,
			TableCount:   tables,
		}
		c.stations = append(c.stations, station)
		c.byCode[code] = station
	}

	if len(c.stations) == 0 {
		return nil, fmt.Errorf("stations CSV has no usable rows")
	}
	return c, nil
}

// Get returns the station for the given code.
func (c *Catalog) Get(code string) (models.Station, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// All returns the stations in file order.
func (c *Catalog) All() []models.Station {
	return slices.Clone(c.stations)
}

// Len returns the number of stations.
func (c *Catalog) Len() int {
	return len(c.stations)
}

// Departments returns the sorted unique department names, for the map
// filter dropdown.
func (c *Catalog) Departments() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.stations {
		if s.Department != "" && !seen[s.Department] {
			seen[s.Department] = true
			out = append(out, s.Department)
		}
	}
	slices.Sort(out)
	return out
}

// Filter returns stations matching the department (empty or "Todos"
// matches all) and a case-insensitive substring query over code, name,
// and municipality.
func (c *Catalog) Filter(department, query string) []models.Station {
	query = strings.ToLower(strings.TrimSpace(query))

	var out []models.Station
	for _, s := range c.stations {
		if department != "" && department != "Todos" && s.Department != department {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Code), query) &&
			!strings.Contains(strings.ToLower(s.Name), query) &&
			!strings.Contains(strings.ToLower(s.Municipality), query) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// skipBOM drops a UTF-8 byte order mark, common in exported CSV files.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(3)
	if err == nil && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
