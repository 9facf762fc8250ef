package zip

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Asset is one file placed in an archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

type manifestEntry struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Bytes    int    `json:"bytes"`
}

// ArchiveAssets zips assets and, when manifest is non-nil, adds a
// manifest.json describing them alongside the given metadata.
func ArchiveAssets(assets []Asset, manifest map[string]any) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	entries := make([]manifestEntry, 0, len(assets))
	for _, asset := range assets {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: asset.Filename, Method: zip.Store, Modified: time.Now()})
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", asset.Filename, err)
		}
		entries = append(entries, manifestEntry{Filename: asset.Filename, MIME: asset.MIME, Bytes: len(asset.Data)})
	}
	if manifest != nil {
		doc := map[string]any{"files": entries}
		for k, v := range manifest {
			doc[k] = v
		}
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("zip: manifest: %w", err)
		}
		w, err := zw.Create("manifest.json")
		if err != nil {
			return nil, fmt.Errorf("zip: create manifest: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("zip: write manifest: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
