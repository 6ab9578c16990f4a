package app

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/dshills/hexpatch/internal/header"
	"github.com/dshills/hexpatch/internal/plugin"
)

// Open reads path and makes it the open document. The first Open also loads
// the plugins, so their init sees the file. Plugins are then sent an Open
// event.
func (app *Application) Open(path string) error {
	doc, err := ReadDocument(path)
	if err != nil {
		return err
	}
	return app.open(doc)
}

// OpenBytes opens data as a scratch document.
func (app *Application) OpenBytes(data []byte) error {
	return app.open(NewDocument("", slices.Clone(data)))
}

func (app *Application) open(doc *Document) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrClosed
	}

	app.doc = doc
	app.offset = 0
	app.header = header.Detect(doc.data)
	app.log.WithFields(logrus.Fields{
		"path":   doc.Path,
		"size":   doc.Len(),
		"format": app.header.Format.String(),
	}).Info("document opened")

	if !app.pluginsLoaded {
		if err := app.loadPlugins(); err != nil {
			app.notes.Errorf("Plugin discovery failed: %v", err)
		}
	}

	app.plugins.Handle(plugin.OpenEvent{}, app.host())
	app.afterCall()
	return nil
}

// EditBytes writes b at the cursor. Plugins handling on_edit see b first
// and may change it; what they leave is what gets written.
func (app *Application) EditBytes(b []byte) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrClosed
	}

	edit := slices.Clone(b)
	app.plugins.Handle(plugin.EditEvent{NewBytes: &edit}, app.host())
	app.doc.patch(app.offset, edit)
	app.afterCall()
	return nil
}

// Save sends plugins a Save event and writes the document.
func (app *Application) Save() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.save()
}

func (app *Application) save() error {
	if app.closed {
		return ErrClosed
	}

	app.plugins.Handle(plugin.SaveEvent{}, app.host())
	app.afterCall()

	if err := app.doc.write(); err != nil {
		app.notes.Errorf("Save failed: %v", err)
		return err
	}
	app.notes.Infof("Saved to %s", app.doc.Path)
	return nil
}
