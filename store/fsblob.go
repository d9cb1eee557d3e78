// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Dir is a BlobStore that writes photos to a local directory, used with
// the SQL backend. The returned URL is a path the server serves itself.
type Dir struct {
	root    string
	baseURL string
}

// NewDir creates the directory if needed. baseURL is the public prefix
// the files are served under, e.g. "/uploads".
func NewDir(root, baseURL string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root, baseURL: baseURL}, nil
}

func (d *Dir) Upload(_ context.Context, data []byte, meta BlobMetadata) (string, error) {
	name := uuid.NewString() + extensionFor(meta)

	path := filepath.Join(d.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &RemoteError{Op: "upload", Name: meta.Name, Err: err}
	}

	slog.Info("photo stored", "name", meta.Name, "size", humanize.Bytes(uint64(len(data))), "path", path)

	return d.baseURL + "/" + name, nil
}

func extensionFor(meta BlobMetadata) string {
	if ext := filepath.Ext(meta.Name); ext != "" {
		return ext
	}
	switch meta.MIMEType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
