// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment.

ParseFlags reads flags first, then falls back to environment variables; a
.env file in the working directory is loaded via godotenv before either.

# Settings

	-p / PORT                     server port (default 3318)
	--backend / STORE_BACKEND     sheets (default) or sql
	--stations / STATIONS_FILE    polling station CSV (required)
	--token-file / TOKEN_FILE     bearer token cache (default .conteo-token)

Sheets backend:

	--spreadsheet / SPREADSHEET_ID    shared spreadsheet (required)
	--drive-folder / DRIVE_FOLDER_ID  photo folder (required)

SQL backend:

	-d / DATABASE_URL     connection string (required)
	-t / DATABASE_TYPE    sqlite (default) or postgres
	--upload-dir / UPLOAD_DIR  local photo directory (default uploads)
*/
package cliparse
