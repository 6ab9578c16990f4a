package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDocumentPatch(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		offset int
		patch  []byte
		want   []byte
	}{
		{"inside", []byte{1, 2, 3, 4}, 1, []byte{9, 9}, []byte{1, 9, 9, 4}},
		{"past end", []byte{1, 2}, 1, []byte{7, 8, 9}, []byte{1, 7, 8, 9}},
		{"empty document", nil, 0, []byte{5}, []byte{5}},
		{"empty patch", []byte{1}, 0, nil, []byte{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDocument("", tt.data)
			d.patch(tt.offset, tt.patch)
			if diff := cmp.Diff(tt.want, d.Bytes()); diff != "" {
				t.Errorf("patch() (-want +got):\n%s", diff)
			}
			if !d.IsModified() {
				t.Error("IsModified() = false after patch")
			}
		})
	}
}

func TestDocumentWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exec.bin")
	if err := os.WriteFile(path, []byte{1}, 0755); err != nil {
		t.Fatal(err)
	}

	d, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	d.patch(1, []byte{2})
	if err := d.write(); err != nil {
		t.Fatalf("write() error = %v", err)
	}
	if d.IsModified() {
		t.Error("IsModified() = true after write")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755 kept", info.Mode().Perm())
	}

	d.ReadOnly = true
	if err := d.write(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("write() read-only error = %v, want ErrReadOnly", err)
	}
}

func TestOperationError(t *testing.T) {
	tests := []struct {
		err  *OperationError
		want string
	}{
		{nil, ""},
		{&OperationError{Op: "save"}, "save"},
		{&OperationError{Op: "open", Target: "/a.bin"}, "open /a.bin"},
		{NewOperationError("open", "/a.bin", errors.New("io error")), "open /a.bin: io error"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
