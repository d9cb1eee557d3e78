// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tallyops/conteo/aggregate"
	"github.com/tallyops/conteo/auth"
	"github.com/tallyops/conteo/catalog"
	"github.com/tallyops/conteo/cliparse"
	"github.com/tallyops/conteo/middleware"
	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/registry"
	"github.com/tallyops/conteo/store"
	"github.com/tallyops/conteo/tally"
)

// maxPhotoUpload caps the multipart form held in memory.
const maxPhotoUpload = 32 << 20

type TallyHandler struct {
	catalog  *catalog.Catalog
	registry *registry.Registry
	tallies  *tally.Store
	tabular  store.TabularStore
	blobs    store.BlobStore
	session  *auth.Session
	cfg      cliparse.Config
}

func NewTallyHandler(c *catalog.Catalog, reg *registry.Registry, t *tally.Store,
	tabular store.TabularStore, blobs store.BlobStore, session *auth.Session, cfg cliparse.Config) *TallyHandler {
	return &TallyHandler{
		catalog:  c,
		registry: reg,
		tallies:  t,
		tabular:  tabular,
		blobs:    blobs,
		session:  session,
		cfg:      cfg,
	}
}

// RecordVote handles PUT /stations/{code}/tables/{table}/votes
func (h *TallyHandler) RecordVote(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEditor(w, h.session); !ok {
		return
	}

	station, ok := h.catalog.Get(r.PathValue("code"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown station code")
		return
	}
	table, ok := tableFromPath(w, r, station.TableCount)
	if !ok {
		return
	}

	// No candidate group means no ballot to enter against.
	if !h.registry.Configured(station.Location()) {
		middleware.ErrorResponse(w, http.StatusConflict, "Location not configured; add candidates first")
		return
	}

	var req models.RecordVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Party == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "party is required")
		return
	}

	h.tallies.RecordVote(station.Code, table, req.Party, req.Value)

	middleware.JSONResponse(w, http.StatusOK, h.tableView(station.Code, table))
}

// AddPhoto handles POST /stations/{code}/tables/{table}/photos
// Accepts multipart uploads under the "photos" field. Files upload
// sequentially; one failure does not abort the rest.
func (h *TallyHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEditor(w, h.session); !ok {
		return
	}

	station, ok := h.catalog.Get(r.PathValue("code"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown station code")
		return
	}
	table, ok := tableFromPath(w, r, station.TableCount)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No files under the photos field")
		return
	}

	uploaded, failed := 0, 0
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			slog.Warn("failed to open uploaded file", "file", header.Filename, "error", err)
			failed++
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Warn("failed to read uploaded file", "file", header.Filename, "error", err)
			failed++
			continue
		}

		url, err := h.blobs.Upload(r.Context(), data, store.BlobMetadata{
			Name:         fmt.Sprintf("%s_mesa%d_%s", station.Code, table, header.Filename),
			MIMEType:     header.Header.Get("Content-Type"),
			ParentFolder: h.cfg.DriveFolderID,
		})
		if errors.Is(err, store.ErrUnauthorized) {
			remoteFailure(w, h.session, err)
			return
		}
		if err != nil {
			slog.Warn("photo upload failed", "station", station.Code, "file", header.Filename, "error", err)
			failed++
			continue
		}

		h.tallies.AddPhoto(station.Code, table, url)
		uploaded++
	}

	if uploaded == 0 {
		middleware.ErrorResponse(w, http.StatusBadGateway, "All photo uploads failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AddPhotoResponse{
		Uploaded: uploaded,
		Failed:   failed,
		Photos:   h.tableView(station.Code, table).Photos,
	})
}

// DeletePhoto handles DELETE /stations/{code}/tables/{table}/photos/{index}
func (h *TallyHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEditor(w, h.session); !ok {
		return
	}

	station, ok := h.catalog.Get(r.PathValue("code"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown station code")
		return
	}
	table, ok := tableFromPath(w, r, station.TableCount)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	// Out-of-range is a silent no-op; the response carries the list as-is.
	h.tallies.RemovePhoto(station.Code, table, index)

	middleware.JSONResponse(w, http.StatusOK, h.tableView(station.Code, table))
}

// Save handles POST /stations/{code}/save
// Flushes the station's tally as appended rows: results, photos, and
// the audit log run jointly; a failed leg gets a compensating
// SAVE_PARTIAL row and the station keeps its unsaved mark.
func (h *TallyHandler) Save(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEditor(w, h.session)
	if !ok {
		return
	}

	station, ok := h.catalog.Get(r.PathValue("code"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown station code")
		return
	}
	if _, ok := h.tallies.Snapshot(station.Code); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Nothing recorded for this station")
		return
	}

	candidates, err := h.registry.Lookup(station.Location())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusConflict, "Location not configured; add candidates first")
		return
	}

	timestamp := time.Now().Format(models.TimestampLayout)
	resultRows := h.tallies.BuildResultRows(station, candidates, timestamp)
	photoRows := h.tallies.BuildPhotoRows(station.Code, email, timestamp)
	totals := h.tallies.ComputeTotals(station.Code)

	detail := fmt.Sprintf("results=%d photos=%d votes=%d", len(resultRows), len(photoRows), aggregate.TotalVotes(totals))
	logRow := tally.BuildLogRow(timestamp, station.Code, models.EventSave, email, detail)

	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures []string
		authErr  bool
	)
	appendLeg := func(name, sheet string, rows [][]string) {
		if len(rows) == 0 {
			return
		}
		g.Go(func() error {
			err := h.tabular.AppendRows(r.Context(), sheet, rows)
			if err != nil {
				mu.Lock()
				failures = append(failures, name)
				if errors.Is(err, store.ErrUnauthorized) {
					authErr = true
				}
				mu.Unlock()
				slog.Error("save leg failed", "station", station.Code, "leg", name, "error", err)
			}
			return err
		})
	}

	appendLeg("results", models.SheetResults, resultRows)
	appendLeg("photos", models.SheetPhotos, photoRows)
	appendLeg("log", models.SheetLog, [][]string{logRow})

	saveErr := g.Wait()

	if authErr {
		remoteFailure(w, h.session, store.ErrUnauthorized)
		return
	}

	partial := saveErr != nil
	if partial {
		// Compensating row: the sheets now disagree and a re-save is
		// needed, so the log must say which legs landed.
		compDetail := fmt.Sprintf("failed_legs=%v %s", failures, detail)
		compRow := tally.BuildLogRow(timestamp, station.Code, models.EventSavePartial, email, compDetail)
		if err := h.tabular.AppendRows(r.Context(), models.SheetLog, [][]string{compRow}); err != nil {
			slog.Error("failed to append compensating log row", "station", station.Code, "error", err)
		}
	} else {
		h.tallies.MarkSaved(station.Code)
		slog.Info("station saved", "station", station.Code, "editor", email,
			"result_rows", len(resultRows), "photo_rows", len(photoRows))
	}

	middleware.JSONResponse(w, http.StatusOK, models.SaveResponse{
		ResultRows: len(resultRows),
		PhotoRows:  len(photoRows),
		TotalVotes: aggregate.TotalVotes(totals),
		Partial:    partial,
	})
}

// tableView builds the response view of one table's current state.
func (h *TallyHandler) tableView(code string, table int) models.TableView {
	view := models.TableView{
		Number: table,
		Votes:  map[string]int{},
		Photos: []string{},
	}
	snapshot, ok := h.tallies.Snapshot(code)
	if !ok {
		return view
	}
	entry, ok := snapshot.Tables[table]
	if !ok {
		return view
	}
	view.Votes = entry.Votes
	view.Photos = entry.Photos
	if view.Photos == nil {
		view.Photos = []string{}
	}
	return view
}
