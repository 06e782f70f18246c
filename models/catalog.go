// Package models manages the speech-model catalog, the on-disk cache, and
// background downloads.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnknownModel is returned for ids not present in the catalog.
var ErrUnknownModel = errors.New("unknown model id")

// DefaultID is the model selected when nothing is configured.
const DefaultID = "large-v3-turbo"

// Descriptor identifies one downloadable whisper.cpp model.
type Descriptor struct {
	ID          string
	DisplayName string
	FileName    string
	URL         string
	SizeHint    string
}

const hfBase = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

var catalog = []Descriptor{
	{
		ID:          "tiny.en",
		DisplayName: "Tiny (English)",
		FileName:    "ggml-tiny.en.bin",
		URL:         hfBase + "ggml-tiny.en.bin",
		SizeHint:    "~75 MB",
	},
	{
		ID:          "base.en",
		DisplayName: "Base (English)",
		FileName:    "ggml-base.en.bin",
		URL:         hfBase + "ggml-base.en.bin",
		SizeHint:    "~142 MB",
	},
	{
		ID:          "base",
		DisplayName: "Base (Multilingual)",
		FileName:    "ggml-base.bin",
		URL:         hfBase + "ggml-base.bin",
		SizeHint:    "~142 MB",
	},
	{
		ID:          "small.en",
		DisplayName: "Small (English)",
		FileName:    "ggml-small.en.bin",
		URL:         hfBase + "ggml-small.en.bin",
		SizeHint:    "~466 MB",
	},
	{
		ID:          "medium",
		DisplayName: "Medium (Multilingual)",
		FileName:    "ggml-medium.bin",
		URL:         hfBase + "ggml-medium.bin",
		SizeHint:    "~1.5 GB",
	},
	{
		ID:          "large-v3",
		DisplayName: "Large v3",
		FileName:    "ggml-large-v3.bin",
		URL:         hfBase + "ggml-large-v3.bin",
		SizeHint:    "~2.9 GB",
	},
	{
		ID:          "large-v3-turbo",
		DisplayName: "Large v3 Turbo",
		FileName:    "ggml-large-v3-turbo.bin",
		URL:         hfBase + "ggml-large-v3-turbo.bin",
		SizeHint:    "~1.6 GB",
	},
}

// Catalog returns the static model catalog.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// CacheDir returns the per-user model cache directory.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, "voicetyper", "models"), nil
}

// Path returns where the model file for id lives under dir. The path is
// derived purely from the catalog entry, so presence of the file is the
// downloaded marker.
func Path(dir, id string) (string, error) {
	d, ok := Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return filepath.Join(dir, d.FileName), nil
}

// IsDownloaded reports whether the model file for id exists under dir.
func IsDownloaded(dir, id string) bool {
	path, err := Path(dir, id)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
