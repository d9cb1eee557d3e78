// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally holds the in-memory tally state and its reconciliation
with the append-only tabular store.

# Store

The Store maps station codes to per-table vote counts and photo URLs:

	tallies := tally.NewStore()
	tallies.RecordVote("4801", 1, "MAS-IPSP", "57")
	tallies.AddPhoto("4801", 1, url)

Vote maps are sparse. A zero, negative, or non-numeric write deletes
the party's entry; a table whose entries are all deleted is dropped.
Mutations mark the station dirty until an explicit save flushes them.

# Reconciliation

Load reads the results and photos sheets and rebuilds the store from
their rows:

	err := tallies.Load(ctx, tabular)

Rows are corrections, not snapshots: for a given station, party, and
table the latest row wins, and a zero-vote correction deletes the
entry. Rows without a table number fold into table 1. Photo rows carry
a free-text label ("Mesa 3") whose first integer selects the table.

Stations with unsaved local edits are overlaid on top of the rebuilt
state, so a reload never destroys work in progress.

# Flushing

A save builds positional rows for the append-only sheets:

	resultRows := tallies.BuildResultRows(station, candidates, ts)
	photoRows := tallies.BuildPhotoRows(code, editor, ts)
	logRow := tally.BuildLogRow(ts, code, event, actor, detail)

BuildResultRows recomputes totals and orders parties by ballot order,
unknown parties last.
*/
package tally
