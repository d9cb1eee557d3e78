// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog loads and queries the polling-station reference data.

Stations come from a CSV file with columns codigo, nombre, departamento,
provincia, municipio, latitud, longitud, mesas. Rows with no code or
unparseable coordinates are skipped with a warning; a missing or invalid
table count defaults to 1; duplicate codes keep the first row.

The catalog is immutable after Load. Queries:

  - Get(code): lookup by unique station code
  - All, Len: full listing
  - Departments: sorted unique department names
  - Filter(department, query): map sidebar filtering
*/
package catalog
