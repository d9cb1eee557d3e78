// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Header rows of the shared spreadsheet, lower-cased the way ReadTable keys
// them. The SQL tabular store uses these to key positional cells; the Sheets
// store reads the live header row and is expected to match.
var sheetHeaders = map[string][]string{
	SheetResults:    {"codigo", "departamento", "provincia", "municipio", "partido", "candidato", "votos", "porcentaje", "fecha"},
	SheetPhotos:     {"codigo", "mesa", "url_foto", "fecha", "editor"},
	SheetCandidates: {"departamento", "provincia", "municipio", "partido", "candidato", "cargo", "color", "orden"},
	SheetLog:        {"fecha", "codigo", "evento", "usuario", "detalle"},
}

// SheetHeaders returns the column headers for a known sheet, or nil.
func SheetHeaders(name string) []string {
	return sheetHeaders[name]
}
