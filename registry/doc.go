// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registry maps administrative locations to their candidate lists.

A Registry is built from the candidates sheet. Row handling is forgiving:
rows missing a location key field or the party code are skipped with a
warning, blank candidate names fall back to the party code, invalid
colors get a neutral gray, and unparseable sort orders get a 999
sentinel. Each group is sorted by sort order, input order breaking ties.

Lookup distinguishes a location with no group (ErrNotConfigured, which
blocks vote entry for its stations) from an empty candidate list.

Add validates strictly (non-blank key fields, 6-digit hex color), inserts
into the in-memory group first, and then appends the row to the sheet; a
failed append is surfaced but the local insert is kept.
*/
package registry
