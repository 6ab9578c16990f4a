// Package app provides the hexpatch application: the open document, the
// cursor, settings and notification log, and the plugins that react to them.
package app

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/hexpatch/internal/header"
	"github.com/dshills/hexpatch/internal/notify"
	"github.com/dshills/hexpatch/internal/plugin"
	"github.com/dshills/hexpatch/internal/plugin/api"
	"github.com/dshills/hexpatch/internal/settings"
)

// DefaultBytesPerRow is the row width used for cursor movement.
const DefaultBytesPerRow = 16

// Application is the plugin host. Every plugin call is made with the
// application's lock held, so plugins never run concurrently.
type Application struct {
	mu sync.Mutex

	doc      *Document
	offset   int
	settings *settings.Settings
	header   header.View
	notes    *notify.Sink

	plugins       *plugin.Manager
	pluginsLoaded bool

	logger *logrus.Logger
	log    *logrus.Entry

	closed bool
	opts   Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to a settings file. Empty uses the defaults.
	ConfigPath string

	// PluginPaths are the directories searched for plugins. Nil uses
	// plugin.DefaultPluginPaths.
	PluginPaths []string

	// Logger receives process diagnostics. Nil discards them.
	Logger *logrus.Logger

	// Metrics, if set, collects plugin metrics.
	Metrics *Metrics

	// BytesPerRow is the row width for up/down movement.
	BytesPerRow int

	// PageRows is the number of rows next/previous move by.
	PageRows int
}

// New creates a new Application with the given options. Plugins are loaded
// by the first Open, or by LoadPlugins.
func New(opts Options) (*Application, error) {
	if opts.Logger == nil {
		opts.Logger = NullLogger()
	}
	if opts.PluginPaths == nil {
		opts.PluginPaths = plugin.DefaultPluginPaths()
	}
	if opts.BytesPerRow <= 0 {
		opts.BytesPerRow = DefaultBytesPerRow
	}
	if opts.PageRows <= 0 {
		opts.PageRows = 16
	}

	app := &Application{
		doc:    NewScratchDocument(),
		header: header.Default,
		notes:  notify.NewSink(notify.WithMirror(opts.Logger)),
		logger: opts.Logger,
		log:    opts.Logger.WithField("component", "app"),
		opts:   opts,
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	app.settings = settings.Default()
	if app.opts.ConfigPath != "" {
		s, err := settings.LoadFile(app.opts.ConfigPath)
		if err != nil {
			return &ComponentError{Component: "settings", Err: err}
		}
		app.settings = s
	}

	config := plugin.DefaultManagerConfig()
	config.PluginPaths = app.opts.PluginPaths
	config.Logger = app.logger
	if app.opts.Metrics != nil {
		config.Metrics = app.opts.Metrics.Plugins
	}
	mgr, err := plugin.NewManager(config)
	if err != nil {
		return &ComponentError{Component: "plugins", Err: err}
	}
	app.plugins = mgr
	return nil
}

// host builds the view of the application handed to plugins. Data points at
// the document's slice so writes made by a plugin land in the document.
func (app *Application) host() *api.Host {
	return &api.Host{
		Data:     &app.doc.data,
		Offset:   app.offset,
		Settings: app.settings,
		Header:   app.header,
		Log:      app.notes,
	}
}

// afterCall clamps the cursor when a plugin shrank the document.
func (app *Application) afterCall() {
	app.offset = app.clamp(app.offset)
}

func (app *Application) clamp(offset int) int {
	if n := app.doc.Len(); offset >= n {
		offset = n - 1
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// LoadPlugins discovers and loads plugins. Plugins that fail to load are
// reported in the notification log; only a discovery failure is returned.
func (app *Application) LoadPlugins() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.loadPlugins()
}

func (app *Application) loadPlugins() error {
	if app.closed {
		return ErrClosed
	}
	if app.pluginsLoaded {
		return nil
	}
	app.pluginsLoaded = true

	err := app.plugins.LoadAll(app.host())
	app.afterCall()
	if err != nil {
		app.log.WithError(err).Warn("plugin discovery failed")
		return &ComponentError{Component: "plugins", Err: err}
	}
	return nil
}

// Document returns the open document.
func (app *Application) Document() *Document {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.doc
}

// Data returns a copy of the document content.
func (app *Application) Data() []byte {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.doc.Bytes()
}

// Offset returns the cursor byte offset.
func (app *Application) Offset() int {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.offset
}

// SetOffset moves the cursor, clamped to the document.
func (app *Application) SetOffset(offset int) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.offset = app.clamp(offset)
}

// Settings returns the live settings. Plugins may change them during any
// call.
func (app *Application) Settings() *settings.Settings {
	return app.settings
}

// Header returns the header detected for the open document.
func (app *Application) Header() header.View {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.header
}

// Notifications returns the notification log.
func (app *Application) Notifications() *notify.Sink {
	return app.notes
}

// Plugins returns every known plugin, including those that failed to load.
func (app *Application) Plugins() []plugin.PluginInfo {
	return app.plugins.Plugins()
}

// Commands returns the commands exported by loaded plugins.
func (app *Application) Commands() []plugin.Command {
	return app.plugins.Commands()
}

// Close closes every plugin. It is safe to call more than once.
func (app *Application) Close() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return nil
	}
	app.closed = true

	if err := app.plugins.Close(); err != nil {
		app.log.WithError(err).Warn("closing plugins")
		return err
	}
	return nil
}
