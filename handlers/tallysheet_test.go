// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tallyops/conteo/models"
	"github.com/tallyops/conteo/store"
	"github.com/tallyops/conteo/testutil"
)

func (e *env) tallyHandler() *TallyHandler {
	return NewTallyHandler(e.catalog, e.registry, e.tallies, e.tabular, e.blobs, e.session, testutil.GetTestConfig())
}

func voteRequest(code, table, body string) *http.Request {
	req := httptest.NewRequest("PUT", "/stations/"+code+"/tables/"+table+"/votes", strings.NewReader(body))
	req.SetPathValue("code", code)
	req.SetPathValue("table", table)
	return req
}

func TestRecordVote(t *testing.T) {
	e := newTestEnv(t)
	handler := e.tallyHandler()

	tests := []struct {
		name       string
		code       string
		table      string
		body       string
		wantStatus int
	}{
		{"valid vote", "4801", "1", `{"party":"IH","value":"12"}`, http.StatusOK},
		{"second table", "4801", "2", `{"party":"CC","value":"4"}`, http.StatusOK},
		{"unknown station", "9999", "1", `{"party":"IH","value":"12"}`, http.StatusNotFound},
		{"table out of bounds", "4801", "3", `{"party":"IH","value":"12"}`, http.StatusBadRequest},
		{"table zero", "4801", "0", `{"party":"IH","value":"12"}`, http.StatusBadRequest},
		{"table not a number", "4801", "x", `{"party":"IH","value":"12"}`, http.StatusBadRequest},
		{"unconfigured location", "7701", "1", `{"party":"IH","value":"12"}`, http.StatusConflict},
		{"missing party", "4801", "1", `{"value":"12"}`, http.StatusBadRequest},
		{"invalid json", "4801", "1", `{broken`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.RecordVote(rec, voteRequest(tt.code, tt.table, tt.body))
			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	totals := e.tallies.ComputeTotals("4801")
	if totals["IH"] != 12 || totals["CC"] != 4 {
		t.Errorf("Totals = %v", totals)
	}
}

func TestRecordVoteRequiresSession(t *testing.T) {
	e := newTestEnv(t)
	e.session = testutil.NewDisconnectedSession(t)

	rec := httptest.NewRecorder()
	e.tallyHandler().RecordVote(rec, voteRequest("4801", "1", `{"party":"IH","value":"12"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
}

func TestRecordVoteZeroDeletes(t *testing.T) {
	e := newTestEnv(t)
	handler := e.tallyHandler()

	rec := httptest.NewRecorder()
	handler.RecordVote(rec, voteRequest("4801", "1", `{"party":"IH","value":"12"}`))
	rec = httptest.NewRecorder()
	handler.RecordVote(rec, voteRequest("4801", "1", `{"party":"IH","value":"0"}`))

	var view models.TableView
	testutil.DecodeJSON(t, rec, &view)
	if len(view.Votes) != 0 {
		t.Errorf("Expected empty votes after zero write, got %v", view.Votes)
	}
}

func photoRequest(t *testing.T, code, table string, names ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("Failed to build multipart form: %v", err)
		}
		fw.Write([]byte("jpeg bytes"))
	}
	w.Close()

	req := httptest.NewRequest("POST", "/stations/"+code+"/tables/"+table+"/photos", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetPathValue("code", code)
	req.SetPathValue("table", table)
	return req
}

func TestAddPhoto(t *testing.T) {
	e := newTestEnv(t)
	handler := e.tallyHandler()

	rec := httptest.NewRecorder()
	handler.AddPhoto(rec, photoRequest(t, "4801", "2", "a.jpg", "b.jpg"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var got models.AddPhotoResponse
	testutil.DecodeJSON(t, rec, &got)
	if got.Uploaded != 2 || got.Failed != 0 || len(got.Photos) != 2 {
		t.Errorf("Response = %+v", got)
	}

	uploads := e.blobs.Uploads()
	if len(uploads) != 2 || !strings.HasPrefix(uploads[0].Name, "4801_mesa2_") {
		t.Errorf("Uploads = %+v", uploads)
	}
	if uploads[0].ParentFolder != "test-folder" {
		t.Errorf("ParentFolder = %q", uploads[0].ParentFolder)
	}
}

func TestAddPhotoAllFail(t *testing.T) {
	e := newTestEnv(t)
	e.blobs.Fail(fmt.Errorf("disk full"))

	rec := httptest.NewRecorder()
	e.tallyHandler().AddPhoto(rec, photoRequest(t, "4801", "1", "a.jpg"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", rec.Code)
	}
	if tally, ok := e.tallies.Snapshot("4801"); ok {
		t.Errorf("Failed uploads must not record photos: %+v", tally)
	}
}

func TestAddPhotoUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	e.blobs.Fail(store.ErrUnauthorized)

	rec := httptest.NewRecorder()
	e.tallyHandler().AddPhoto(rec, photoRequest(t, "4801", "1", "a.jpg"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
	if e.session.Connected() {
		t.Error("Rejected token must invalidate the session")
	}
}

func TestAddPhotoNoFiles(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.tallyHandler().AddPhoto(rec, photoRequest(t, "4801", "1"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestDeletePhoto(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.AddPhoto("4801", 1, "u1")
	e.tallies.AddPhoto("4801", 1, "u2")

	req := httptest.NewRequest("DELETE", "/stations/4801/tables/1/photos/0", nil)
	req.SetPathValue("code", "4801")
	req.SetPathValue("table", "1")
	req.SetPathValue("index", "0")
	rec := httptest.NewRecorder()
	e.tallyHandler().DeletePhoto(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var view models.TableView
	testutil.DecodeJSON(t, rec, &view)
	if len(view.Photos) != 1 || view.Photos[0] != "u2" {
		t.Errorf("Photos = %v", view.Photos)
	}
}

func saveRequest(code string) *http.Request {
	req := httptest.NewRequest("POST", "/stations/"+code+"/save", nil)
	req.SetPathValue("code", code)
	return req
}

func TestSave(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "30")
	e.tallies.RecordVote("4801", 2, "MAS-IPSP", "70")
	e.tallies.AddPhoto("4801", 1, "https://blob.test/1")

	rec := httptest.NewRecorder()
	e.tallyHandler().Save(rec, saveRequest("4801"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got models.SaveResponse
	testutil.DecodeJSON(t, rec, &got)
	if got.Partial {
		t.Error("Expected full save")
	}
	if got.ResultRows != 2 || got.PhotoRows != 1 || got.TotalVotes != 100 {
		t.Errorf("Response = %+v", got)
	}

	results := e.tabular.Appended(models.SheetResults)
	if len(results) != 2 {
		t.Fatalf("Result rows = %v", results)
	}
	// Ballot order: MAS-IPSP before IH.
	if results[0][4] != "MAS-IPSP" || results[0][6] != "70" || results[0][7] != "70.00" {
		t.Errorf("First result row = %v", results[0])
	}
	if results[1][4] != "IH" || results[1][6] != "30" {
		t.Errorf("Second result row = %v", results[1])
	}

	photos := e.tabular.Appended(models.SheetPhotos)
	if len(photos) != 1 || photos[0][1] != "Mesa 1" || photos[0][4] != testutil.TestEmail {
		t.Errorf("Photo rows = %v", photos)
	}

	logs := e.tabular.Appended(models.SheetLog)
	if len(logs) != 1 || logs[0][2] != models.EventSave || logs[0][3] != testutil.TestEmail {
		t.Errorf("Log rows = %v", logs)
	}

	if e.tallies.HasUnsaved("4801") {
		t.Error("Save must clear the unsaved mark")
	}
}

func TestSavePartialFailure(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "30")
	e.tabular.FailSheet(models.SheetResults, &store.RemoteError{Op: "append", Name: models.SheetResults, Err: fmt.Errorf("500")})

	rec := httptest.NewRecorder()
	e.tallyHandler().Save(rec, saveRequest("4801"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var got models.SaveResponse
	testutil.DecodeJSON(t, rec, &got)
	if !got.Partial {
		t.Error("Expected partial save")
	}

	logs := e.tabular.Appended(models.SheetLog)
	var events []string
	for _, row := range logs {
		events = append(events, row[2])
	}
	found := false
	for _, ev := range events {
		if ev == models.EventSavePartial {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a compensating %s row, got events %v", models.EventSavePartial, events)
	}

	if !e.tallies.HasUnsaved("4801") {
		t.Error("Partial save must keep the unsaved mark")
	}
}

func TestSaveUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	e.tallies.RecordVote("4801", 1, "IH", "30")
	e.tabular.FailSheet(models.SheetResults, store.ErrUnauthorized)

	rec := httptest.NewRecorder()
	e.tallyHandler().Save(rec, saveRequest("4801"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
	if e.session.Connected() {
		t.Error("Rejected token must invalidate the session")
	}
	if !e.tallies.HasUnsaved("4801") {
		t.Error("Tally state must survive an auth failure")
	}
}

func TestSaveNothingRecorded(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.tallyHandler().Save(rec, saveRequest("4801"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestSaveUnconfiguredLocation(t *testing.T) {
	e := newTestEnv(t)
	// Photos can exist without a candidate group, but a save needs one.
	e.tallies.AddPhoto("7701", 1, "u1")

	rec := httptest.NewRecorder()
	e.tallyHandler().Save(rec, saveRequest("7701"))
	if rec.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", rec.Code)
	}
}
