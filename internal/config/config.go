// Package config merges command line settings with an optional YAML or JSON
// config file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/wolfeidau/authfront/internal/storage"
	"gopkg.in/yaml.v3"
)

// Settings controls how the CLI reaches the server and where it keeps the
// session.
type Settings struct {
	ServerURL string
	Timeout   time.Duration
	Store     string
	StoreDir  string
}

// fileSettings is the on-disk form. Timeout is a duration string ("10s")
// in both formats.
type fileSettings struct {
	ServerURL string `yaml:"server" json:"server"`
	Timeout   string `yaml:"timeout" json:"timeout"`
	Store     string `yaml:"store" json:"store"`
	StoreDir  string `yaml:"storeDir" json:"storeDir"`
}

// LoadFile reads settings from path. Files ending in .json are parsed as
// JSON, everything else as YAML.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileSettings

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	s := &Settings{
		ServerURL: raw.ServerURL,
		Store:     raw.Store,
		StoreDir:  raw.StoreDir,
	}

	if raw.Timeout != "" {
		s.Timeout, err = time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw.Timeout, err)
		}
	}

	return s, nil
}

// Merge overrides s with every non-zero field of other (config file takes
// precedence over flags).
func (s Settings) Merge(other *Settings) Settings {
	if other == nil {
		return s
	}
	if other.ServerURL != "" {
		s.ServerURL = other.ServerURL
	}
	if other.Timeout > 0 {
		s.Timeout = other.Timeout
	}
	if other.Store != "" {
		s.Store = other.Store
	}
	if other.StoreDir != "" {
		s.StoreDir = other.StoreDir
	}
	return s
}

// Validate checks the merged settings.
func (s Settings) Validate() error {
	var errs []error

	if s.ServerURL == "" {
		errs = append(errs, errors.New("server URL is required"))
	} else if u, err := url.Parse(s.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid server URL %q", s.ServerURL))
	}

	if s.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", s.Timeout))
	}

	switch s.Store {
	case "", storage.KindFile, storage.KindSQLite, storage.KindMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", storage.ErrUnknownBackend, s.Store))
	}

	return errors.Join(errs...)
}
