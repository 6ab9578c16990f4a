package app

import (
	"os"
	"path/filepath"
)

// Document is the file being edited.
type Document struct {
	// Path is the file path. Empty for a scratch document.
	Path string
	// Name is the display name.
	Name string
	// ReadOnly prevents saving.
	ReadOnly bool

	data     []byte
	modified bool
}

// NewDocument creates a document over content.
func NewDocument(path string, content []byte) *Document {
	name := "[scratch]"
	if path != "" {
		name = filepath.Base(path)
	}
	return &Document{
		Path: path,
		Name: name,
		data: content,
	}
}

// NewScratchDocument creates an empty document with no path.
func NewScratchDocument() *Document {
	return NewDocument("", nil)
}

// ReadDocument reads path into a new document.
func ReadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	return NewDocument(path, content), nil
}

// IsScratch returns true if the document has no file path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// IsModified reports edits made through the application since the last
// save. Writes a plugin makes through context.data are not tracked.
func (d *Document) IsModified() bool {
	return d.modified
}

// Len returns the document size in bytes.
func (d *Document) Len() int {
	return len(d.data)
}

// Bytes returns a copy of the content.
func (d *Document) Bytes() []byte {
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// patch writes b at offset, growing the document if b runs past the end.
func (d *Document) patch(offset int, b []byte) {
	if end := offset + len(b); end > len(d.data) {
		grown := make([]byte, end)
		copy(grown, d.data)
		d.data = grown
	}
	copy(d.data[offset:], b)
	d.modified = true
}

func (d *Document) write() error {
	if d.IsScratch() {
		return NewOperationError("save", "", ErrNoFilePath)
	}
	if d.ReadOnly {
		return NewOperationError("save", d.Path, ErrReadOnly)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(d.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(d.Path, d.data, mode); err != nil {
		return NewOperationError("save", d.Path, err)
	}
	d.modified = false
	return nil
}
