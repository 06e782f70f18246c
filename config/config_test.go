package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("hotkey = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("expected parse error for malformed file")
	}
	if cfg != Default() {
		t.Errorf("expected defaults after parse error, got %+v", cfg)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Config{Hotkey: "f18", Model: "base.en", Language: "en", Verbose: true}

	if err := want.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("roundtrip mismatch: got %+v want %+v", got, want)
	}
}

func TestOverridePrecedence(t *testing.T) {
	base := Config{Hotkey: "alt_r", Model: "base.en", Language: "en"}

	verbose := true
	got := base.Override(Overrides{Hotkey: "f18", Verbose: &verbose})
	if got.Hotkey != "f18" {
		t.Errorf("hotkey override not applied: %q", got.Hotkey)
	}
	if got.Model != "base.en" || got.Language != "en" {
		t.Errorf("unset overrides must keep existing values: %+v", got)
	}
	if !got.Verbose {
		t.Error("verbose override not applied")
	}

	// Receiver must be untouched.
	if base.Hotkey != "alt_r" || base.Verbose {
		t.Errorf("Override mutated receiver: %+v", base)
	}
}

func TestLoadFillsEmptyRequiredKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("language = \"de\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hotkey != DefaultHotkey || cfg.Model != DefaultModel {
		t.Errorf("missing keys must default: %+v", cfg)
	}
	if cfg.Language != "de" {
		t.Errorf("present key lost: %+v", cfg)
	}
}
