// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the two remote collaborators the tally system
persists through, and their implementations.

# Contracts

TabularStore is the spreadsheet:

	ReadTable(ctx, name) -> []Row       // keyed by lower-cased header
	AppendRows(ctx, name, rows) error   // positional tuples, append-only

BlobStore is the photo storage:

	Upload(ctx, bytes, metadata) -> public URL

# Implementations

  - Sheets: Google Sheets values.get / values.append REST endpoints,
    authorized by a bearer TokenSource.
  - Drive: Google Drive multipart upload plus an anyone-reader permission;
    returns the uc?id= shareable URL.
  - SQL: append-only sheet_row table on sqlite or postgres, keyed by the
    fixed headers in models.SheetHeaders. Used without Google access and
    in tests.
  - Dir: local-directory photo storage paired with the SQL store.

# Errors

Failures wrap into *RemoteError. A rejected bearer token surfaces as
ErrUnauthorized so callers can clear the cached session.
*/
package store
