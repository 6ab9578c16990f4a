package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader discovers plugins on the filesystem.
//
// A search path may contain single-file plugins (name.lua) and directory
// plugins. A directory plugin is described by plugin.json or plugin.yaml,
// or else runs init.lua or plugin.lua.
type Loader struct {
	// Search paths for plugins (checked in order)
	paths []string

	// Discovered plugins by name, and their discovery order
	discovered map[string]*PluginInfo
	order      []string
}

// PluginInfo contains discovery information about a plugin.
type PluginInfo struct {
	Name     string
	Manifest *Manifest
	State    State
	Error    error

	// SingleFile is set for plugins that are a lone .lua file.
	SingleFile bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths sets the plugin search paths.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// NewLoader creates a new plugin loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		paths:      DefaultPluginPaths(),
		discovered: make(map[string]*PluginInfo),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// DefaultPluginPaths returns the default plugin search paths.
func DefaultPluginPaths() []string {
	paths := make([]string, 0, 2)

	// User plugins: ~/.config/hexpatch/plugins/
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hexpatch", "plugins"))
	}

	// Project plugins: .hexpatch/plugins/
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".hexpatch", "plugins"))
	}

	return paths
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// Discover finds all plugins in the search paths. Plugins are returned in
// discovery order: search path order, then file name order. When two
// plugins share a name the first one found wins.
func (l *Loader) Discover() ([]*PluginInfo, error) {
	l.discovered = make(map[string]*PluginInfo)
	l.order = nil

	for _, basePath := range l.paths {
		if err := l.discoverInPath(basePath); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", basePath, err)
		}
	}

	plugins := make([]*PluginInfo, 0, len(l.order))
	for _, name := range l.order {
		plugins = append(plugins, l.discovered[name])
	}
	return plugins, nil
}

// discoverInPath finds plugins in a single directory.
func (l *Loader) discoverInPath(basePath string) error {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if path doesn't exist
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			if filepath.Ext(entry.Name()) == ".lua" {
				name := strings.TrimSuffix(entry.Name(), ".lua")
				l.add(&PluginInfo{
					Name:       name,
					Manifest:   NewManifestMinimal(name, basePath, entry.Name()),
					SingleFile: true,
				})
			}
			continue
		}

		l.add(inspectPlugin(entry.Name(), filepath.Join(basePath, entry.Name())))
	}

	return nil
}

func (l *Loader) add(info *PluginInfo) {
	if _, exists := l.discovered[info.Name]; exists {
		return
	}
	l.discovered[info.Name] = info
	l.order = append(l.order, info.Name)
}

// inspectPlugin examines a plugin directory and returns its info.
func inspectPlugin(name, path string) *PluginInfo {
	info := &PluginInfo{Name: name}

	if manifestPath := findManifest(path); manifestPath != "" {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			info.Error = fmt.Errorf("invalid manifest: %w", err)
			info.State = StateError
			return info
		}
		info.Manifest = manifest
		info.Name = manifest.Name
		return info
	}

	for _, main := range []string{"init.lua", "plugin.lua"} {
		if _, err := os.Stat(filepath.Join(path, main)); err == nil {
			info.Manifest = NewManifestMinimal(name, path, main)
			return info
		}
	}

	info.Error = ErrNoEntryPoint
	info.State = StateError
	return info
}

// Get returns info for a discovered plugin by name.
func (l *Loader) Get(name string) (*PluginInfo, bool) {
	info, ok := l.discovered[name]
	return info, ok
}

// FindPlugin searches for a plugin by name across all paths without a full
// discovery. Returns the first match found.
func (l *Loader) FindPlugin(name string) (*PluginInfo, error) {
	if info, ok := l.discovered[name]; ok && info.Error == nil {
		return info, nil
	}

	for _, basePath := range l.paths {
		pluginPath := filepath.Join(basePath, name)
		if stat, err := os.Stat(pluginPath); err == nil && stat.IsDir() {
			if info := inspectPlugin(name, pluginPath); info.Error == nil {
				return info, nil
			}
		}

		luaPath := filepath.Join(basePath, name+".lua")
		if _, err := os.Stat(luaPath); err == nil {
			return &PluginInfo{
				Name:       name,
				Manifest:   NewManifestMinimal(name, basePath, name+".lua"),
				SingleFile: true,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
}

// Errors returns the discovered plugins that could not be inspected.
func (l *Loader) Errors() []*PluginInfo {
	var errored []*PluginInfo
	for _, name := range l.order {
		if info := l.discovered[name]; info.Error != nil {
			errored = append(errored, info)
		}
	}
	return errored
}
