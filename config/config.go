// Package config handles the persisted user configuration.
//
// The file is TOML at <user config dir>/voicetyper/config.toml. A missing
// file means defaults; a malformed file is reported to the caller but still
// yields defaults so startup never fails on bad config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultHotkey = "alt_r"
	DefaultModel  = "large-v3-turbo"
)

type Config struct {
	Hotkey   string `toml:"hotkey"`
	Model    string `toml:"model"`
	Language string `toml:"language,omitempty"`
	Verbose  bool   `toml:"verbose,omitempty"`
}

// Overrides are optional replacements applied on top of a loaded Config.
// Empty strings and nil mean "keep the existing value".
type Overrides struct {
	Hotkey   string
	Model    string
	Language string
	Verbose  *bool
}

func Default() Config {
	return Config{
		Hotkey: DefaultHotkey,
		Model:  DefaultModel,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "voicetyper", "config.toml"), nil
}

func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the config file at path. A missing file yields defaults with a
// nil error. A malformed file yields defaults with a non-nil error so the
// caller can warn and continue.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Hotkey == "" {
		cfg.Hotkey = DefaultHotkey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg, nil
}

// Override returns a new Config with the given overrides applied. The
// receiver is never mutated; callers replace the whole value.
func (c Config) Override(o Overrides) Config {
	out := c
	if o.Hotkey != "" {
		out.Hotkey = o.Hotkey
	}
	if o.Model != "" {
		out.Model = o.Model
	}
	if o.Language != "" {
		out.Language = o.Language
	}
	if o.Verbose != nil {
		out.Verbose = *o.Verbose
	}
	return out
}

// Save writes the whole config to path, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
