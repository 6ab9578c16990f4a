package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dshills/hexpatch/internal/input/key"
	"github.com/dshills/hexpatch/internal/input/mouse"
	"github.com/dshills/hexpatch/internal/notify"
	"github.com/dshills/hexpatch/internal/plugin/api"
	"github.com/dshills/hexpatch/internal/plugin/command"
	plua "github.com/dshills/hexpatch/internal/plugin/lua"
	"github.com/dshills/hexpatch/internal/settings"
)

func newHost(size int) *api.Host {
	data := make([]byte, size)
	host := &api.Host{Data: &data}
	host.Normalize()
	return host
}

func mustNew(t *testing.T, source string, host *api.Host, opts ...Option) *Plugin {
	t.Helper()
	p, err := New(source, host, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestInitRuns(t *testing.T) {
	source := `
		test_value = 0
		function init(context)
			test_value = 42
		end
	`
	p := mustNew(t, source, newHost(0x100))

	got := p.state.GetGlobal("test_value").String()
	if got != "42" {
		t.Errorf("test_value = %s, want 42", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax", "function init(context"},
		{"top level raise", `error("boom")`},
		{"init raises", `function init(context) error("boom") end`},
		{"init exports undefined command", `
			function init(context)
				context.add_command("test", "Test command")
			end
		`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.source, newHost(0x10), WithName("broken"))
			if err == nil {
				p.Close()
				t.Fatal("New() expected error")
			}
			if p != nil {
				t.Error("New() returned a plugin with an error")
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("New() error = %T, want *LoadError", err)
			}
			if le.Name != "broken" {
				t.Errorf("LoadError.Name = %q, want broken", le.Name)
			}
		})
	}
}

func TestLoadErrorCarriesValidation(t *testing.T) {
	source := `
		function init(context)
			context.add_command("test", "Test command")
		end
	`
	_, err := New(source, newHost(0))
	var cve *api.CommandValidationError
	if !errors.As(err, &cve) {
		t.Fatalf("New() error = %v, want CommandValidationError", err)
	}
	if cve.Command != "test" {
		t.Errorf("Command = %q, want test", cve.Command)
	}
}

func TestDiscoverHandlers(t *testing.T) {
	defs := map[Events]string{
		OnOpen:  "function on_open(context) end\n",
		OnEdit:  "function on_edit(new_bytes, context) end\n",
		OnSave:  "function on_save(context) end\n",
		OnKey:   "function on_key(key_event, context) end\n",
		OnMouse: "function on_mouse(mouse_event, context) end\n",
	}

	for set := NoEvents; set <= AllEvents; set++ {
		source := "x = 1\n"
		for kind, def := range defs {
			if set.Has(kind) {
				source += def
			}
		}
		p := mustNew(t, source, newHost(0))
		if got := p.Handlers(); got != set {
			t.Errorf("Handlers() = %s, want %s", got, set)
		}
	}
}

func TestHandlersNotReprobed(t *testing.T) {
	source := `
		function init(context) end
		function define(context)
			function on_open(context) end
		end
	`
	host := newHost(0)
	p := mustNew(t, source, host)
	if err := p.RunCommand("define", host); err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	if p.Handlers().Has(OnOpen) {
		t.Error("Handlers() picked up on_open defined after load")
	}
}

func TestNonFunctionHandlerIgnored(t *testing.T) {
	p := mustNew(t, `on_open = 5`, newHost(0))
	if p.Handlers() != NoEvents {
		t.Errorf("Handlers() = %s, want none", p.Handlers())
	}
}

func TestOpenEditsData(t *testing.T) {
	source := `
		function on_open(context)
			context.data:set(0, 42)
		end
	`
	host := newHost(0x100)
	p := mustNew(t, source, host)
	if err := p.Dispatch(OpenEvent{}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if (*host.Data)[0] != 42 {
		t.Errorf("data[0] = %d, want 42", (*host.Data)[0])
	}
}

func TestEditEventBytesVisible(t *testing.T) {
	source := `
		function on_edit(new_bytes, context)
			new_bytes:set(0, 0x90)
			new_bytes:push(0xc3)
		end
	`
	host := newHost(4)
	p := mustNew(t, source, host)

	buf := []byte{0x00}
	if err := p.Dispatch(EditEvent{NewBytes: &buf}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if diff := cmp.Diff([]byte{0x90, 0xc3}, buf); diff != "" {
		t.Errorf("new bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestInitChangesSettings(t *testing.T) {
	source := `
		function init(context)
			context.settings.color_hex_selected = {fg="#ff0000", bg="Black"}
			context.settings.color_address = {fg=2}
			context.settings.key_up = {code="Down", modifiers=0, kind="Press", state=0}

			if context.settings:get_custom("test") ~= "Hello" then
				error("custom setting not set")
			end
			context.settings:set_custom("string", "World")
			context.settings:set_custom("integer", 42)
			context.settings:set_custom("float", 3.14)
			context.settings:set_custom("boolean", true)
			context.settings:set_custom("nil", nil)
			context.settings:set_custom("style", {fg="#ff0000", bg="#000000"})
			context.settings:set_custom("key", {code="Up"})
		end
	`
	host := newHost(0x100)
	host.Settings.SetCustom("test", settings.String("Hello"))
	host.Settings.SetCustom("nil", settings.Integer(1))
	mustNew(t, source, host)

	s := host.Settings
	if got, _ := s.ColorStyle("hex_selected"); got != (settings.Style{Fg: settings.RGB(0xff, 0, 0), Bg: settings.Named(settings.Black)}) {
		t.Errorf("hex_selected = %+v", got)
	}
	if got, _ := s.ColorStyle("address"); got != (settings.Style{Fg: settings.Indexed(2)}) {
		t.Errorf("address = %+v", got)
	}
	if got, _ := s.KeyBinding("up"); got != key.New(key.CodeDown, key.ModNone) {
		t.Errorf("key up = %v, want Down", got)
	}

	want := map[string]settings.Value{
		"string":  settings.String("World"),
		"integer": settings.Integer(42),
		"float":   settings.Float(3.14),
		"boolean": settings.Boolean(true),
		"style":   settings.StyleValue(settings.Style{Fg: settings.RGB(0xff, 0, 0), Bg: settings.RGB(0, 0, 0)}),
		"key":     settings.KeyBinding(key.New(key.CodeUp, key.ModNone)),
	}
	for name, v := range want {
		got, ok := s.GetCustom(name)
		if !ok || got != v {
			t.Errorf("custom %q = %v, %v; want %v", name, got, ok, v)
		}
	}
	if _, ok := s.GetCustom("nil"); ok {
		t.Error("custom \"nil\" still present after setting it to nil")
	}
}

func TestOnKeyWithInit(t *testing.T) {
	source := `
		command = nil
		function init(context)
			command = context.settings.key_confirm
		end
		function on_key(key_event, context)
			if key_event.code == command.code then
				context.data:set(context.offset, 42)
			end
		end
	`
	host := newHost(0x100)
	host.Offset = 3
	p := mustNew(t, source, host)

	if err := p.Dispatch(KeyEvent{Key: key.New(key.CodeDown, key.ModNone)}, host); err != nil {
		t.Fatalf("Dispatch(Down) error = %v", err)
	}
	if (*host.Data)[3] != 0 {
		t.Fatalf("data[3] = %d after Down, want 0", (*host.Data)[3])
	}

	confirm, _ := host.Settings.KeyBinding("confirm")
	if err := p.Dispatch(KeyEvent{Key: confirm}, host); err != nil {
		t.Fatalf("Dispatch(confirm) error = %v", err)
	}
	if (*host.Data)[3] != 42 {
		t.Errorf("data[3] = %d, want 42", (*host.Data)[3])
	}
}

func TestOnMouse(t *testing.T) {
	source := `
		function on_mouse(mouse_event, context)
			context.log(2, mouse_event.kind .. " " .. mouse_event.button .. " " .. mouse_event.column)
		end
	`
	host := newHost(0)
	p := mustNew(t, source, host)

	ev := mouse.Event{Kind: mouse.KindDown, Button: mouse.ButtonLeft, Column: 7, Row: 1}
	if err := p.Dispatch(MouseEvent{Mouse: ev}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	last, _ := host.Log.Last()
	if last.Message != "Down Left 7" {
		t.Errorf("log = %q, want %q", last.Message, "Down Left 7")
	}
}

func TestLogFromLua(t *testing.T) {
	source := `
		function init(context)
			context.log(1, "Hello from init")
		end

		function on_open(context)
			context.log(2, "Hello from on_open")
		end
	`
	host := newHost(0x100)
	p := mustNew(t, source, host)

	entries := host.Log.Entries()
	if len(entries) != 1 || entries[0].Level != notify.LevelDebug || entries[0].Message != "Hello from init" {
		t.Fatalf("entries after init = %+v", entries)
	}
	if host.Log.Level() != notify.LevelDebug {
		t.Errorf("Level() = %v, want Debug", host.Log.Level())
	}

	host.Log.Clear()
	if err := p.Dispatch(OpenEvent{}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	entries = host.Log.Entries()
	if len(entries) != 1 || entries[0].Level != notify.LevelInfo || entries[0].Message != "Hello from on_open" {
		t.Fatalf("entries after on_open = %+v", entries)
	}
	if host.Log.Level() != notify.LevelInfo {
		t.Errorf("Level() = %v, want Info", host.Log.Level())
	}
}

func TestExportCommand(t *testing.T) {
	source := `
		function init(context)
			context.add_command("test", "Test command")
			context.add_command("test3", "Test command 3")
		end

		function test(context)
			context.add_command("test2", "Test command 2")
			context.remove_command("test")
		end

		function test2(context)
			context.add_command("does_not_exist", "This command does not exist")
		end

		function test3(context)
			context.add_command("test", "Test command")
			context.add_command("test", "Test command 1")
		end
	`
	host := newHost(0x100)
	p := mustNew(t, source, host)

	want := []command.Info{
		{Command: "test", Description: "Test command"},
		{Command: "test3", Description: "Test command 3"},
	}
	if diff := cmp.Diff(want, p.Commands()); diff != "" {
		t.Fatalf("commands after init (-want +got):\n%s", diff)
	}

	if err := p.RunCommand("test", host); err != nil {
		t.Fatalf("RunCommand(test) error = %v", err)
	}
	want = []command.Info{
		{Command: "test3", Description: "Test command 3"},
		{Command: "test2", Description: "Test command 2"},
	}
	if diff := cmp.Diff(want, p.Commands()); diff != "" {
		t.Fatalf("commands after test (-want +got):\n%s", diff)
	}

	err := p.RunCommand("test2", host)
	var rte *RuntimeError
	if !errors.As(err, &rte) {
		t.Fatalf("RunCommand(test2) error = %v, want *RuntimeError", err)
	}
	var cve *api.CommandValidationError
	if !errors.As(err, &cve) || cve.Command != "does_not_exist" {
		t.Errorf("RunCommand(test2) error = %v, want validation of does_not_exist", err)
	}
	if diff := cmp.Diff(want, p.Commands()); diff != "" {
		t.Fatalf("commands after failed test2 (-want +got):\n%s", diff)
	}

	if err := p.RunCommand("test3", host); err != nil {
		t.Fatalf("RunCommand(test3) error = %v", err)
	}
	want = append(want, command.Info{Command: "test", Description: "Test command 1"})
	if diff := cmp.Diff(want, p.Commands()); diff != "" {
		t.Fatalf("commands after test3 (-want +got):\n%s", diff)
	}
}

func TestCommandsKeptOnFailure(t *testing.T) {
	source := `
		function partial(context)
			context.add_command("partial", "kept")
			error("late failure")
		end
	`
	host := newHost(0)
	p := mustNew(t, source, host)

	if err := p.RunCommand("partial", host); err == nil {
		t.Fatal("RunCommand() expected error")
	}
	want := []command.Info{{Command: "partial", Description: "kept"}}
	if diff := cmp.Diff(want, p.Commands()); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestHeaderDefaults(t *testing.T) {
	source := `
		function on_open(context)
			context.log(1, context.header.bitness)
			context.log(1, context.header.architecture)
			context.log(1, context.header.entry_point)
		end
	`
	host := newHost(0x100)
	p := mustNew(t, source, host)
	if err := p.Dispatch(OpenEvent{}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	var got []string
	for _, e := range host.Log.Entries() {
		got = append(got, e.Message)
	}
	if diff := cmp.Diff([]string{"64", "Unknown", "0"}, got); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
}

func TestDispatchHandlerMissing(t *testing.T) {
	host := newHost(0)
	p := mustNew(t, `function on_open(context) end`, host)

	events := []Event{
		EditEvent{},
		SaveEvent{},
		KeyEvent{Key: key.NewChar('a', key.ModNone)},
		MouseEvent{},
	}
	for _, ev := range events {
		err := p.Dispatch(ev, host)
		if !errors.Is(err, ErrHandlerMissing) {
			t.Errorf("Dispatch(%s) error = %v, want ErrHandlerMissing", ev.Kind(), err)
		}
	}
}

func TestDispatchRuntimeError(t *testing.T) {
	host := newHost(0)
	p := mustNew(t, `function on_save(context) error("disk full") end`, host, WithName("saver"))

	err := p.Dispatch(SaveEvent{}, host)
	var rte *RuntimeError
	if !errors.As(err, &rte) {
		t.Fatalf("Dispatch() error = %v, want *RuntimeError", err)
	}
	if rte.Plugin != "saver" || rte.Function != "on_save" {
		t.Errorf("RuntimeError = %+v", rte)
	}
}

func TestHandleLogsFailure(t *testing.T) {
	host := newHost(0)
	p := mustNew(t, `function on_save(context) error("disk full") end`, host)

	p.Handle(SaveEvent{}, host)

	last, ok := host.Log.Last()
	if !ok || last.Level != notify.LevelError {
		t.Fatalf("Last() = %+v, %v; want an error entry", last, ok)
	}
	if want := "In plugin: "; len(last.Message) < len(want) || last.Message[:len(want)] != want {
		t.Errorf("message = %q, want prefix %q", last.Message, want)
	}
}

func TestScopeDoesNotEscape(t *testing.T) {
	source := `
		saved = nil
		saved_data = nil
		function on_open(context)
			saved = context
			saved_data = context.data
		end
		function use_context(context)
			return saved.offset
		end
		function use_data(context)
			return saved_data:len()
		end
	`
	host := newHost(8)
	p := mustNew(t, source, host)
	if err := p.Dispatch(OpenEvent{}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	for _, fn := range []string{"use_context", "use_data"} {
		err := p.RunCommand(fn, host)
		if !errors.Is(err, plua.ErrScopeClosed) {
			t.Errorf("RunCommand(%s) error = %v, want ErrScopeClosed", fn, err)
		}
	}
}

func TestRunCommandNotFound(t *testing.T) {
	host := newHost(0)
	p := mustNew(t, `x = 1`, host)
	if err := p.RunCommand("missing", host); !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("RunCommand() error = %v, want ErrCommandNotFound", err)
	}
}

func TestClose(t *testing.T) {
	host := newHost(0)
	p := mustNew(t, `function on_open(context) end`, host)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := p.Dispatch(OpenEvent{}, host); !errors.Is(err, ErrClosed) {
		t.Errorf("Dispatch() after Close error = %v, want ErrClosed", err)
	}
}

func TestNilHost(t *testing.T) {
	p := mustNew(t, `function on_open(context) context.data:push(1) end`, nil)
	if err := p.Dispatch(OpenEvent{}, nil); err != nil {
		t.Errorf("Dispatch(nil host) error = %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patcher.lua")
	if err := os.WriteFile(path, []byte(`function on_save(context) end`), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFromFile(path, newHost(0))
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	defer p.Close()
	if p.Name() != "patcher" || p.Path() != path {
		t.Errorf("Name(), Path() = %q, %q", p.Name(), p.Path())
	}
	if p.Handlers() != OnSave {
		t.Errorf("Handlers() = %s, want on_save", p.Handlers())
	}

	_, err = NewFromFile(filepath.Join(dir, "missing.lua"), newHost(0))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("NewFromFile(missing) error = %v, want *LoadError", err)
	}
}

func TestPrintGoesToLogger(t *testing.T) {
	host := newHost(0)
	mustNew(t, `print("hello")`, host)
	if host.Log.Len() != 0 {
		t.Errorf("print wrote %d notification entries, want 0", host.Log.Len())
	}
}

func TestMetricsAndCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	cache, err := NewChunkCache(4, metrics)
	if err != nil {
		t.Fatalf("NewChunkCache() error = %v", err)
	}

	source := `
		function init(context) context.add_command("go", "Go") end
		function go(context) end
		function on_save(context) error("no") end
	`
	host := newHost(0)
	p1 := mustNew(t, source, host, WithName("m"), WithMetrics(metrics), WithChunkCache(cache))
	p2 := mustNew(t, source, host, WithName("m"), WithMetrics(metrics), WithChunkCache(cache))

	if got := testutil.ToFloat64(metrics.ChunkCacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ChunkCacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if cache.Len() != 1 {
		t.Errorf("cache.Len() = %d, want 1", cache.Len())
	}

	if err := p1.RunCommand("go", host); err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	_ = p2.Dispatch(SaveEvent{}, host)

	if got := testutil.ToFloat64(metrics.LoadsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("loads ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CallsTotal.WithLabelValues("m", "command", "ok")); got != 1 {
		t.Errorf("command calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CallsTotal.WithLabelValues("m", "on_save", "error")); got != 1 {
		t.Errorf("on_save errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CommandsExported.WithLabelValues("m")); got != 1 {
		t.Errorf("commands exported = %v, want 1", got)
	}
}

func TestCacheSkipsBadSource(t *testing.T) {
	cache, err := NewChunkCache(0, nil)
	if err != nil {
		t.Fatalf("NewChunkCache() error = %v", err)
	}
	if _, err := New("function (", newHost(0), WithChunkCache(cache)); err == nil {
		t.Fatal("New() expected error")
	}
	if cache.Len() != 0 {
		t.Errorf("cache.Len() = %d, want 0", cache.Len())
	}
}

func TestEventsString(t *testing.T) {
	tests := []struct {
		events Events
		want   string
	}{
		{NoEvents, "none"},
		{OnOpen, "on_open"},
		{OnKey | OnOpen, "on_open|on_key"},
		{AllEvents, "on_open|on_edit|on_save|on_key|on_mouse"},
	}
	for _, tt := range tests {
		if got := tt.events.String(); got != tt.want {
			t.Errorf("Events(%d).String() = %q, want %q", tt.events, got, tt.want)
		}
	}
	if got := (OnOpen | OnKey).HandlerName(); got != "" {
		t.Errorf("HandlerName() of two kinds = %q, want empty", got)
	}
}
