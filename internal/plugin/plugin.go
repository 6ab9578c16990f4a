package plugin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hexpatch/internal/plugin/api"
	"github.com/dshills/hexpatch/internal/plugin/command"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
)

// commandFunction is the metrics label used for every command call.
const commandFunction = "command"

// Plugin is one loaded guest script together with the commands it exports.
//
// A Plugin is not safe for concurrent dispatch; calls are serialized by an
// internal mutex and run synchronously on the caller's goroutine.
type Plugin struct {
	mu sync.Mutex

	id   uuid.UUID
	name string
	path string

	state    *plua.State
	commands *command.Registry
	handlers Events

	logger  *logrus.Logger
	log     *logrus.Entry
	metrics *Metrics
	cache   *ChunkCache
	closed  bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithName sets the name used in errors, logs and metrics.
func WithName(name string) Option {
	return func(p *Plugin) {
		p.name = name
	}
}

// WithLogger sets the process logger. Lua print output is logged at Info.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithMetrics records load and call metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Plugin) {
		p.metrics = m
	}
}

// WithChunkCache compiles the source through c.
func WithChunkCache(c *ChunkCache) Option {
	return func(p *Plugin) {
		p.cache = c
	}
}

func withPath(path string) Option {
	return func(p *Plugin) {
		p.path = path
	}
}

// New loads a plugin from source. The source runs first; then init, if
// defined, is called with a context over host. If either fails New returns
// a *LoadError and no plugin. Commands exported by a failed init are
// discarded with it.
func New(source string, host *api.Host, opts ...Option) (*Plugin, error) {
	p := &Plugin{
		id:       uuid.New(),
		name:     "plugin",
		commands: command.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logrus.New()
		p.logger.SetOutput(io.Discard)
	}
	p.log = p.logger.WithFields(logrus.Fields{
		"component": "plugin",
		"plugin":    p.name,
		"plugin_id": p.id.String(),
	})

	err := p.load(source, host)
	p.metrics.recordLoad(err)
	if err != nil {
		p.closeState()
		p.metrics.deletePlugin(p.name)
		p.log.WithError(err).Warn("plugin failed to load")
		return nil, &LoadError{Name: p.name, Path: p.path, Err: err}
	}

	p.log.WithField("handlers", p.handlers.String()).Debug("plugin loaded")
	return p, nil
}

// NewFromFile loads a plugin from a Lua file. The name defaults to the file
// name without extension.
func NewFromFile(path string, host *api.Host, opts ...Option) (*Plugin, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts = append([]Option{WithName(name), withPath(path)}, opts...)

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: name, Path: path, Err: err}
	}
	return New(string(source), host, opts...)
}

func (p *Plugin) load(source string, host *api.Host) error {
	state, err := plua.NewState(plua.WithPrint(func(msg string) {
		p.log.Info(msg)
	}))
	if err != nil {
		return fmt.Errorf("creating lua state: %w", err)
	}
	p.state = state

	if err := api.DefaultRegistry().InjectAll(state.LuaState()); err != nil {
		return err
	}

	if err := p.run(source); err != nil {
		return err
	}

	if state.HasFunction("init") {
		if err := p.call("init", host, nil); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}

	p.handlers = p.discoverHandlers()
	return nil
}

func (p *Plugin) run(source string) error {
	chunk := p.name
	if p.path != "" {
		chunk = p.path
	}

	if p.cache == nil {
		return p.state.DoString(source)
	}
	proto, err := p.cache.Compile(chunk, source)
	if err != nil {
		return err
	}
	return p.state.DoProto(proto)
}

// discoverHandlers probes the globals once for each handler name.
func (p *Plugin) discoverHandlers() Events {
	handlers := NoEvents
	for _, h := range handlerNames {
		if p.state.HasFunction(h.name) {
			handlers |= h.kind
		}
	}
	return handlers
}

// call runs the global fn with a fresh context. The payload, if given, is
// built inside the same scope and passed before the context. The command
// registry moves into the context for the call and is stored back whether
// or not the call succeeded.
func (p *Plugin) call(fn string, host *api.Host, payload func(*lua.LState, *plua.Scope) lua.LValue) error {
	if host == nil {
		host = &api.Host{}
	}
	host.Normalize()

	L := p.state.LuaState()
	scope := plua.NewScope()
	ctx := &api.Context{Host: host, Commands: p.commands, Scope: scope}
	p.commands = nil

	var args []lua.LValue
	if payload != nil {
		args = append(args, payload(L, scope))
	}
	args = append(args, api.NewContext(L, ctx))

	_, err := p.state.Call(fn, args...)

	scope.Close()
	p.commands = ctx.Commands
	p.metrics.setCommands(p.name, p.commands.Len())
	return err
}

// ID returns the identifier assigned when the plugin was loaded.
func (p *Plugin) ID() uuid.UUID {
	return p.id
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return p.name
}

// Path returns the file the plugin was loaded from, or "".
func (p *Plugin) Path() string {
	return p.path
}

// Handlers returns the event handlers found when the plugin was loaded.
// Functions defined later are not picked up.
func (p *Plugin) Handlers() Events {
	return p.handlers
}

// Commands returns the exported commands in registration order.
func (p *Plugin) Commands() []command.Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commands.Commands()
}

// Dispatch calls the handler for event. It returns an error wrapping
// ErrHandlerMissing if the plugin has no such handler, and a *RuntimeError
// if the handler fails.
func (p *Plugin) Dispatch(event Event, host *api.Host) error {
	kind := event.Kind()
	fn := kind.HandlerName()
	if !p.handlers.Has(kind) || fn == "" {
		return fmt.Errorf("%w: %s has no %s", ErrHandlerMissing, p.name, kind)
	}

	var payload func(*lua.LState, *plua.Scope) lua.LValue
	switch e := event.(type) {
	case EditEvent:
		buf := e.NewBytes
		if buf == nil {
			buf = new([]byte)
		}
		payload = func(L *lua.LState, scope *plua.Scope) lua.LValue {
			return api.NewBytes(L, scope, buf)
		}
	case KeyEvent:
		payload = func(L *lua.LState, _ *plua.Scope) lua.LValue {
			return api.KeyEvent(L, e.Key)
		}
	case MouseEvent:
		payload = func(L *lua.LState, _ *plua.Scope) lua.LValue {
			return api.MouseEvent(L, e.Mouse)
		}
	}

	return p.invoke(fn, fn, host, payload)
}

// Handle dispatches event and logs a failure to the host's notification
// log at Error instead of returning it.
func (p *Plugin) Handle(event Event, host *api.Host) {
	if host == nil {
		host = &api.Host{}
	}
	if err := p.Dispatch(event, host); err != nil {
		host.Normalize()
		host.Log.Errorf("In plugin: %v", err)
	}
}

// RunCommand calls the global function id with a context over host.
func (p *Plugin) RunCommand(id string, host *api.Host) error {
	return p.invoke(id, commandFunction, host, nil)
}

func (p *Plugin) invoke(fn, label string, host *api.Host, payload func(*lua.LState, *plua.Scope) lua.LValue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return &RuntimeError{Plugin: p.name, Function: fn, Err: ErrClosed}
	}
	if !p.state.HasFunction(fn) {
		return &RuntimeError{Plugin: p.name, Function: fn, Err: ErrCommandNotFound}
	}

	start := time.Now()
	err := p.call(fn, host, payload)
	p.metrics.recordCall(p.name, label, err, time.Since(start))
	if err != nil {
		p.log.WithError(err).WithField("function", fn).Debug("plugin call failed")
		return &RuntimeError{Plugin: p.name, Function: fn, Err: err}
	}
	return nil
}

// Close releases the Lua state. Close is idempotent.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.metrics.deletePlugin(p.name)
	return p.closeState()
}

func (p *Plugin) closeState() error {
	if p.state == nil {
		return nil
	}
	return p.state.Close()
}
