// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	defaultDriveUploadURL = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart"
	defaultDriveFilesURL  = "https://www.googleapis.com/drive/v3/files"

	// Template for the shareable URL built from a file id.
	drivePublicURL = "https://drive.google.com/uc?id=%s"
)

// Drive uploads tally-sheet photos to a Google Drive folder and makes them
// world-readable. It implements BlobStore.
type Drive struct {
	folderID  string
	uploadURL string
	filesURL  string
	tokens    TokenSource
	client    *http.Client
}

// DriveOption customizes a Drive store.
type DriveOption func(*Drive)

// WithDriveURLs overrides the upload and files API URLs. Used in tests.
func WithDriveURLs(uploadURL, filesURL string) DriveOption {
	return func(d *Drive) {
		d.uploadURL = uploadURL
		d.filesURL = filesURL
	}
}

// WithDriveClient overrides the HTTP client.
func WithDriveClient(c *http.Client) DriveOption {
	return func(d *Drive) { d.client = c }
}

func NewDrive(folderID string, tokens TokenSource, opts ...DriveOption) *Drive {
	d := &Drive{
		folderID:  folderID,
		uploadURL: defaultDriveUploadURL,
		filesURL:  defaultDriveFilesURL,
		tokens:    tokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Upload stores the bytes as a file in the configured folder, grants
// public read access, and returns the shareable URL.
func (d *Drive) Upload(ctx context.Context, data []byte, meta BlobMetadata) (string, error) {
	token, err := d.tokens.Token()
	if err != nil {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: err}
	}

	folder := meta.ParentFolder
	if folder == "" {
		folder = d.folderID
	}

	body, contentType, err := multipartBody(data, meta, folder)
	if err != nil {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.uploadURL, body)
	if err != nil {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: ErrUnauthorized}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &RemoteError{Op: "upload", Name: meta.Name,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))}
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &uploaded); err != nil || uploaded.ID == "" {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: fmt.Errorf("missing file id in response")}
	}

	if err := d.makePublic(ctx, token, uploaded.ID); err != nil {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: err}
	}

	slog.Info("photo uploaded", "name", meta.Name, "size", humanize.Bytes(uint64(len(data))), "file_id", uploaded.ID)

	return fmt.Sprintf(drivePublicURL, uploaded.ID), nil
}

// makePublic grants anyone-with-the-link read access to the file.
func (d *Drive) makePublic(ctx context.Context, token, fileID string) error {
	payload := []byte(`{"role":"reader","type":"anyone"}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.filesURL+"/"+fileID+"/permissions", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("permission failed with status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	return nil
}

// multipartBody builds a multipart/related body: JSON metadata part plus
// the media bytes, as the Drive upload endpoint expects.
func multipartBody(data []byte, meta BlobMetadata, folder string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := w.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	metaJSON, err := json.Marshal(map[string]any{
		"name":     meta.Name,
		"mimeType": meta.MIMEType,
		"parents":  []string{folder},
	})
	if err != nil {
		return nil, "", err
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return nil, "", err
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", meta.MIMEType)
	mediaPart, err := w.CreatePart(mediaHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := mediaPart.Write(data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, "multipart/related; boundary=" + w.Boundary(), nil
}
