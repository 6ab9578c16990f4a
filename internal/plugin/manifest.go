package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Manifest file names, checked in this order.
const (
	manifestJSON = "plugin.json"
	manifestYAML = "plugin.yaml"
	manifestYML  = "plugin.yml"
)

// Manifest describes a directory plugin. Single-file plugins get a minimal
// manifest derived from the file name.
//
// Example plugin.yaml:
//
//	name: nop-sled
//	version: 1.0.0
//	description: Fill the selection with NOPs
//	main: init.lua
type Manifest struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
	Author      string `json:"author" yaml:"author"`

	// Main is the Lua file to run, relative to the plugin directory.
	Main string `json:"main" yaml:"main"`

	path string
}

// Manifest validation errors.
var (
	ErrMissingName    = errors.New("manifest: name is required")
	ErrInvalidName    = errors.New("manifest: name must be lowercase alphanumeric with hyphens or underscores")
	ErrInvalidVersion = errors.New("manifest: version must be valid semver")
	ErrInvalidMain    = errors.New("manifest: main must be a .lua file inside the plugin directory")
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// LoadManifest reads a plugin.json or plugin.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// findManifest returns the manifest file in dir, or "" if there is none.
func findManifest(dir string) string {
	for _, name := range []string{manifestJSON, manifestYAML, manifestYML} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadManifestFromDir loads the manifest of a plugin directory.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	p := findManifest(dir)
	if p == "" {
		return nil, fmt.Errorf("%w: no manifest in %s", ErrPluginNotFound, dir)
	}
	return LoadManifest(p)
}

// NewManifestMinimal creates a manifest for a plugin without a manifest file.
func NewManifestMinimal(name, path, main string) *Manifest {
	return &Manifest{
		Name:    name,
		Version: "0.0.0",
		Main:    main,
		path:    path,
	}
}

func (m *Manifest) applyDefaults() {
	if m.Main == "" {
		m.Main = "init.lua"
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate checks the manifest for errors.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}
	if filepath.Ext(m.Main) != ".lua" || filepath.IsAbs(m.Main) || !filepath.IsLocal(m.Main) {
		return fmt.Errorf("%w: %s", ErrInvalidMain, m.Main)
	}
	return nil
}

// Path returns the plugin directory.
func (m *Manifest) Path() string {
	return m.path
}

// MainPath returns the full path to the main Lua file.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.path, m.Main)
}

// String returns a string representation of the manifest.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
