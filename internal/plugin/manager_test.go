package plugin

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dshills/hexpatch/internal/notify"
	"github.com/dshills/hexpatch/internal/plugin/command"
)

func newTestManager(t *testing.T, dirs ...string) *Manager {
	t.Helper()
	m, err := NewManager(ManagerConfig{PluginPaths: dirs})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.lua"), `
		function init(context) context.add_command("hello", "Say hello") end
		function hello(context) context.log(2, "hello from a") end
		function on_open(context) context.data:set(0, 1) end
	`)
	writeFile(t, filepath.Join(dir, "b", "init.lua"), `
		function on_open(context) context.data:set(1, 2) end
	`)
	writeFile(t, filepath.Join(dir, "broken.lua"), `function init(context) error("nope") end`)

	host := newHost(4)
	m := newTestManager(t, dir)
	if err := m.LoadAll(host); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	var states []string
	for _, info := range m.Plugins() {
		states = append(states, info.Name+"="+info.State.String())
	}
	if diff := cmp.Diff([]string{"a=loaded", "b=loaded", "broken=error"}, states); diff != "" {
		t.Errorf("Plugins() (-want +got):\n%s", diff)
	}

	last, _ := host.Log.Last()
	if last.Level != notify.LevelError || !strings.Contains(last.Message, "broken") {
		t.Errorf("load failure not logged: %+v", last)
	}

	if err := m.Dispatch(OpenEvent{}, host); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 0, 0}, *host.Data); diff != "" {
		t.Errorf("data after open (-want +got):\n%s", diff)
	}

	want := []Command{{Plugin: "a", Info: command.Info{Command: "hello", Description: "Say hello"}}}
	if diff := cmp.Diff(want, m.Commands()); diff != "" {
		t.Errorf("Commands() (-want +got):\n%s", diff)
	}
	if err := m.RunCommand("hello", host); err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	if last, _ := host.Log.Last(); last.Message != "hello from a" {
		t.Errorf("RunCommand() log = %q", last.Message)
	}
	if err := m.RunCommand("missing", host); !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("RunCommand(missing) error = %v, want ErrCommandNotFound", err)
	}
}

func TestManagerDispatchSkipsAndJoins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.lua"), `function on_save(context) error("a failed") end`)
	writeFile(t, filepath.Join(dir, "b.lua"), `function on_save(context) context.log(2, "b saved") end`)
	writeFile(t, filepath.Join(dir, "c.lua"), `function on_key(key_event, context) end`)

	host := newHost(0)
	m := newTestManager(t, dir)
	if err := m.LoadAll(host); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	err := m.Dispatch(SaveEvent{}, host)
	var rte *RuntimeError
	if !errors.As(err, &rte) || rte.Plugin != "a" {
		t.Fatalf("Dispatch() error = %v, want RuntimeError from a", err)
	}
	if last, _ := host.Log.Last(); last.Message != "b saved" {
		t.Errorf("b did not run after a failed: last log %q", last.Message)
	}

	host.Log.Clear()
	m.Handle(SaveEvent{}, host)
	entries := host.Log.Entries()
	if len(entries) != 2 || !strings.HasPrefix(entries[0].Message, "In plugin: ") || entries[0].Level != notify.LevelError {
		t.Errorf("Handle() entries = %+v", entries)
	}
}

func TestManagerLoadAndUnload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.lua"), `function on_open(context) end`)

	host := newHost(0)
	m := newTestManager(t, dir)

	if _, err := m.Load("one", host); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := m.Load("one", host); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("second Load() error = %v, want ErrAlreadyLoaded", err)
	}
	if _, err := m.Load("two", host); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Load(two) error = %v, want ErrPluginNotFound", err)
	}

	if err := m.Unload("one"); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if _, ok := m.Get("one"); ok {
		t.Error("Get() found unloaded plugin")
	}
	if got := m.Plugins()[0].State; got != StateClosed {
		t.Errorf("State = %v, want closed", got)
	}
	if err := m.Unload("one"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("second Unload() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManagerReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer", "init.lua")
	writeFile(t, path, "answer = 42")

	host := newHost(0)
	m := newTestManager(t, dir)
	if err := m.LoadAll(host); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	old, _ := m.Get("answer")

	writeFile(t, path, "answer = 100")
	name, err := m.ReloadPath(path, host)
	if err != nil {
		t.Fatalf("ReloadPath() error = %v", err)
	}
	if name != "answer" {
		t.Errorf("ReloadPath() name = %q, want answer", name)
	}

	p, _ := m.Get("answer")
	if p == old {
		t.Fatal("plugin instance not replaced")
	}
	if got := p.state.GetGlobal("answer").String(); got != "100" {
		t.Errorf("answer = %s, want 100", got)
	}

	writeFile(t, path, "answer = (")
	if err := m.Reload("answer", host); err == nil {
		t.Fatal("Reload() of broken source expected error")
	}
	if cur, _ := m.Get("answer"); cur != p {
		t.Error("failed reload replaced the running plugin")
	}
}

func TestManagerReloadPathNewPlugin(t *testing.T) {
	dir := t.TempDir()
	host := newHost(0)
	m := newTestManager(t, dir)
	if err := m.LoadAll(host); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	path := filepath.Join(dir, "late.lua")
	writeFile(t, path, "function on_save(context) end")
	name, err := m.ReloadPath(path, host)
	if err != nil {
		t.Fatalf("ReloadPath() error = %v", err)
	}
	if name != "late" {
		t.Errorf("ReloadPath() name = %q, want late", name)
	}
	if _, ok := m.Get("late"); !ok {
		t.Error("Get(late) not found")
	}

	if _, err := m.ReloadPath(filepath.Join(dir, "ghost.lua"), host); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("ReloadPath(ghost) error = %v, want ErrPluginNotFound", err)
	}
}

func TestManagerMetrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "m.lua"), "x = 1")

	metrics := NewMetrics(prometheus.NewRegistry())
	m, err := NewManager(ManagerConfig{PluginPaths: []string{dir}, Metrics: metrics})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Close()

	host := newHost(0)
	if err := m.LoadAll(host); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if err := m.Reload("m", host); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := testutil.ToFloat64(metrics.ChunkCacheHits); got != 1 {
		t.Errorf("chunk cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.LoadsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("loads = %v, want 2", got)
	}
}
