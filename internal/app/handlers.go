package app

import (
	"github.com/dshills/hexpatch/internal/input/key"
	"github.com/dshills/hexpatch/internal/input/mouse"
	"github.com/dshills/hexpatch/internal/plugin"
)

// HandleKey sends e to plugins, then runs the binding it matches. Movement
// and saving are done here; quitting returns ErrQuit. The matched binding
// name is returned so the caller can handle the rest (help, run, popups).
func (app *Application) HandleKey(e key.Event) (string, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return "", ErrClosed
	}

	app.plugins.Handle(plugin.KeyEvent{Key: e}, app.host())
	app.afterCall()

	action, ok := app.settings.Action(e)
	if !ok {
		return "", nil
	}

	row := app.opts.BytesPerRow
	page := row * app.opts.PageRows
	switch action {
	case "up":
		app.move(-row)
	case "down":
		app.move(row)
	case "left":
		app.move(-1)
	case "right":
		app.move(1)
	case "previous":
		app.move(-page)
	case "next":
		app.move(page)
	case "first":
		app.offset = 0
	case "last":
		app.offset = app.clamp(app.doc.Len())
	case "save":
		return action, app.save()
	case "quit":
		return action, ErrQuit
	case "save_and_quit":
		if err := app.save(); err != nil {
			return action, err
		}
		return action, ErrQuit
	}
	return action, nil
}

func (app *Application) move(delta int) {
	app.offset = app.clamp(app.offset + delta)
}

// HandleMouse sends e to plugins.
func (app *Application) HandleMouse(e mouse.Event) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrClosed
	}
	app.plugins.Handle(plugin.MouseEvent{Mouse: e}, app.host())
	app.afterCall()
	return nil
}

// RunCommand runs a plugin command. A failure is also written to the
// notification log.
func (app *Application) RunCommand(id string) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrClosed
	}

	err := app.plugins.RunCommand(id, app.host())
	app.afterCall()
	if err != nil {
		app.notes.Errorf("In plugin: %v", err)
	}
	return err
}

// ReloadPlugin reloads the plugin a changed file belongs to and returns its
// name. If the new source fails to load the old instance keeps running.
func (app *Application) ReloadPlugin(path string) (string, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return "", ErrClosed
	}

	name, err := app.plugins.ReloadPath(path, app.host())
	app.afterCall()
	if err != nil {
		if name == "" {
			name = path
		}
		app.notes.Errorf("Plugin %s failed to reload: %v", name, err)
		return name, err
	}
	app.notes.Infof("Plugin %s reloaded", name)
	return name, nil
}
