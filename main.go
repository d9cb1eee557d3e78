// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/catalog"
	"github.com/tallyops/conteo/cliparse"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/router"
	"github.com/tallyops/conteo/store"
	"github.com/tallyops/conteo/tally"
)

func main() {
	// Human-readable logs on a terminal, JSON lines otherwise.
	if isatty.IsTerminal(os.Stderr.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Load the station catalog
	cat, err := catalog.LoadFile(cfg.StationsFile)
	if err != nil {
		slog.Error("failed to load station catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("station catalog loaded", "stations", cat.Len(), "departments", len(cat.Departments()))

	session := auth.NewSession(cfg.TokenFile)

	// Pick the storage collaborators
	tabular, blobs, err := buildStores(cfg, session)
	if err != nil {
		slog.Error("failed to initialize stores", "error", err)
		os.Exit(1)
	}

	reg := registry.New()
	tallies := tally.NewStore()

	// A cached token lets the server come up already connected and
	// pull the remote state before serving.
	ctx := context.Background()
	restored, err := session.Restore(ctx)
	if err != nil {
		slog.Warn("token restore failed, starting disconnected", "error", err)
	}
	if restored || cfg.Backend == cliparse.BackendSQL {
		if rows, err := tabular.ReadTable(ctx, models.SheetCandidates); err == nil {
			reg.Rebuild(rows)
		} else {
			slog.Warn("initial candidate pull failed", "error", err)
		}
		if err := tallies.Load(ctx, tabular); err != nil {
			slog.Warn("initial tally pull failed", "error", err)
		}
	}
	if restored {
		slog.Info("session restored", "email", session.Email())
	}

	// Create router
	mux := router.NewRouter(cat, reg, tallies, tabular, blobs, session, cfg)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "backend", cfg.Backend)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// buildStores wires the tabular and blob collaborators for the
// configured backend: Google Sheets + Drive, or a SQL database with a
// local photo directory.
func buildStores(cfg cliparse.Config, session *auth.Session) (store.TabularStore, store.BlobStore, error) {
	switch cfg.Backend {
	case cliparse.BackendSheets:
		tabular := store.NewSheets(cfg.SpreadsheetID, session)
		blobs := store.NewDrive(cfg.DriveFolderID, session)
		return tabular, blobs, nil

	case cliparse.BackendSQL:
		driver := "sqlite"
		if cfg.DatabaseType == "postgres" {
			driver = "postgres"
		}
		conn, err := sql.Open(driver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := conn.Ping(); err != nil {
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		tabular, err := store.NewSQL(conn, cfg.DatabaseType)
		if err != nil {
			return nil, nil, fmt.Errorf("schema creation failed: %w", err)
		}
		baseURL := fmt.Sprintf("http://localhost:%d/uploads", cfg.Port)
		blobs, err := store.NewDir(cfg.UploadDir, baseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("upload directory unusable: %w", err)
		}
		return tabular, blobs, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
