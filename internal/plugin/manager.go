package plugin

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/hexpatch/internal/plugin/api"
	"github.com/dshills/hexpatch/internal/plugin/command"
)

// Manager owns every loaded plugin. Events fan out to plugins in load
// order; commands resolve to the first plugin exporting them.
type Manager struct {
	mu sync.RWMutex

	// Loader for plugin discovery
	loader *Loader

	// Discovered plugins by name, and load order
	entries map[string]*entry
	order   []string

	log     *logrus.Entry
	logger  *logrus.Logger
	metrics *Metrics
	cache   *ChunkCache
}

type entry struct {
	info   *PluginInfo
	plugin *Plugin
}

// ManagerConfig configures the plugin manager.
type ManagerConfig struct {
	// PluginPaths are directories to search for plugins
	PluginPaths []string

	// Logger receives process diagnostics. Nil discards them.
	Logger *logrus.Logger

	// Metrics, if set, records loads and calls.
	Metrics *Metrics

	// ChunkCacheSize bounds the compiled chunk cache used across reloads.
	ChunkCacheSize int
}

// DefaultManagerConfig returns the default configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		PluginPaths:    DefaultPluginPaths(),
		ChunkCacheSize: DefaultChunkCacheSize,
	}
}

// Command is a command exported by a named plugin.
type Command struct {
	Plugin string
	command.Info
}

// NewManager creates a plugin manager.
func NewManager(config ManagerConfig) (*Manager, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	cache, err := NewChunkCache(config.ChunkCacheSize, config.Metrics)
	if err != nil {
		return nil, fmt.Errorf("creating chunk cache: %w", err)
	}

	return &Manager{
		loader:  NewLoader(WithPaths(config.PluginPaths...)),
		entries: make(map[string]*entry),
		log:     logger.WithField("component", "plugin-manager"),
		logger:  logger,
		metrics: config.Metrics,
		cache:   cache,
	}, nil
}

// Loader returns the plugin loader.
func (m *Manager) Loader() *Loader {
	return m.loader
}

// LoadAll discovers and loads every plugin. A plugin that fails to load is
// recorded with StateError, logged to the host at Error and skipped; only
// a discovery failure is returned.
func (m *Manager) LoadAll(host *api.Host) error {
	infos, err := m.loader.Discover()
	if err != nil {
		return err
	}

	for _, info := range infos {
		m.mu.RLock()
		_, known := m.entries[info.Name]
		m.mu.RUnlock()
		if known {
			continue
		}

		if info.Error != nil {
			m.record(info, nil)
			m.reportLoadFailure(host, info.Name, info.Error)
			continue
		}
		if _, err := m.load(info, host); err != nil {
			m.reportLoadFailure(host, info.Name, err)
		}
	}
	return nil
}

// Load loads one plugin by name.
func (m *Manager) Load(name string, host *api.Host) (*Plugin, error) {
	m.mu.RLock()
	e, exists := m.entries[name]
	m.mu.RUnlock()
	if exists && e.plugin != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, name)
	}

	info, err := m.loader.FindPlugin(name)
	if err != nil {
		return nil, err
	}
	return m.load(info, host)
}

// load runs the plugin and records the outcome.
func (m *Manager) load(info *PluginInfo, host *api.Host) (*Plugin, error) {
	p, err := m.open(info, host)
	if err != nil {
		info.State = StateError
		info.Error = err
		m.record(info, nil)
		return nil, err
	}

	info.State = StateLoaded
	info.Error = nil
	m.record(info, p)
	m.log.WithFields(logrus.Fields{
		"plugin":   info.Name,
		"handlers": p.Handlers().String(),
	}).Info("plugin loaded")
	return p, nil
}

func (m *Manager) open(info *PluginInfo, host *api.Host) (*Plugin, error) {
	if info.Manifest == nil {
		return nil, ErrNilManifest
	}
	return NewFromFile(info.Manifest.MainPath(), host,
		WithName(info.Name),
		WithLogger(m.logger),
		WithMetrics(m.metrics),
		WithChunkCache(m.cache),
	)
}

// record stores the entry, keeping the position of a known name.
func (m *Manager) record(info *PluginInfo, p *Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[info.Name]; !exists {
		m.order = append(m.order, info.Name)
	}
	m.entries[info.Name] = &entry{info: info, plugin: p}
}

func (m *Manager) reportLoadFailure(host *api.Host, name string, err error) {
	m.log.WithError(err).WithField("plugin", name).Error("plugin failed to load")
	if host != nil && host.Log != nil {
		host.Log.Errorf("Plugin %s failed to load: %v", name, err)
	}
}

// Reload reloads a plugin from disk. The old instance keeps running until
// the new one has loaded; if loading fails the old instance stays.
func (m *Manager) Reload(name string, host *api.Host) error {
	m.mu.RLock()
	e, ok := m.entries[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}

	info, err := m.loader.FindPlugin(name)
	if err != nil {
		info = e.info
	}

	p, err := m.open(info, host)
	if err != nil {
		m.log.WithError(err).WithField("plugin", name).Warn("plugin reload failed")
		return err
	}

	old := e.plugin
	info.State = StateLoaded
	info.Error = nil
	m.record(info, p)
	if old != nil {
		old.Close()
	}
	m.log.WithField("plugin", name).Info("plugin reloaded")
	return nil
}

// ReloadPath reloads the plugin a changed file belongs to, or loads it if
// the file belongs to a plugin not seen before. It returns the plugin name.
func (m *Manager) ReloadPath(path string, host *api.Host) (string, error) {
	if name, ok := m.owner(path); ok {
		return name, m.Reload(name, host)
	}

	infos, err := m.loader.Discover()
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if !owns(info, path) {
			continue
		}
		if info.Error != nil {
			return info.Name, info.Error
		}
		_, err := m.load(info, host)
		return info.Name, err
	}
	return "", fmt.Errorf("%w: %s", ErrPluginNotFound, path)
}

func (m *Manager) owner(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.order {
		if owns(m.entries[name].info, path) {
			return name, true
		}
	}
	return "", false
}

// owns reports whether path is the file of a single-file plugin or a file
// inside a directory plugin.
func owns(info *PluginInfo, path string) bool {
	if info.Manifest == nil {
		return false
	}
	if info.SingleFile {
		return info.Manifest.MainPath() == path
	}
	return filepath.Dir(path) == info.Manifest.Path()
}

// Unload closes a plugin and marks it closed.
func (m *Manager) Unload(name string) error {
	m.mu.Lock()
	e, ok := m.entries[name]
	if !ok || e.plugin == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	p := e.plugin
	e.plugin = nil
	e.info.State = StateClosed
	m.mu.Unlock()

	return p.Close()
}

// Get returns a loaded plugin by name.
func (m *Manager) Get(name string) (*Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	if !ok || e.plugin == nil {
		return nil, false
	}
	return e.plugin, true
}

// Plugins returns every known plugin in load order, including those that
// failed to load.
func (m *Manager) Plugins() []PluginInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]PluginInfo, 0, len(m.order))
	for _, name := range m.order {
		infos = append(infos, *m.entries[name].info)
	}
	return infos
}

// loaded returns the loaded plugins in load order.
func (m *Manager) loaded() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.order))
	for _, name := range m.order {
		if p := m.entries[name].plugin; p != nil {
			plugins = append(plugins, p)
		}
	}
	return plugins
}

// Dispatch sends event to every plugin that handles it, in load order. A
// failing plugin does not stop the others; all failures are returned
// joined.
func (m *Manager) Dispatch(event Event, host *api.Host) error {
	var errs []error
	for _, p := range m.loaded() {
		if !p.Handlers().Has(event.Kind()) {
			continue
		}
		if err := p.Dispatch(event, host); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handle sends event like Dispatch and logs each failure to the host's
// notification log at Error.
func (m *Manager) Handle(event Event, host *api.Host) {
	for _, p := range m.loaded() {
		if p.Handlers().Has(event.Kind()) {
			p.Handle(event, host)
		}
	}
}

// Commands returns the commands of every loaded plugin, in load order.
func (m *Manager) Commands() []Command {
	var cmds []Command
	for _, p := range m.loaded() {
		for _, info := range p.Commands() {
			cmds = append(cmds, Command{Plugin: p.Name(), Info: info})
		}
	}
	return cmds
}

// RunCommand runs id in the first plugin that exports it.
func (m *Manager) RunCommand(id string, host *api.Host) error {
	for _, p := range m.loaded() {
		for _, info := range p.Commands() {
			if info.Command == id {
				return p.RunCommand(id, host)
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrCommandNotFound, id)
}

// Close closes every plugin.
func (m *Manager) Close() error {
	m.mu.Lock()
	var plugins []*Plugin
	for _, name := range m.order {
		e := m.entries[name]
		if e.plugin != nil {
			plugins = append(plugins, e.plugin)
			e.plugin = nil
			e.info.State = StateClosed
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, p := range plugins {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.cache.Purge()
	return errors.Join(errs...)
}
