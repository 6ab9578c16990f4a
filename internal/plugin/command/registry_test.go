package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddUpdatesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Add("test", "A")
	r.Add("test", "B")

	want := []Info{{Command: "test", Description: "B"}}
	if diff := cmp.Diff(want, r.Commands()); diff != "" {
		t.Errorf("Commands() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Add("a", "1")
	r.Add("b", "2")
	r.Add("c", "3")
	r.Add("a", "updated")

	want := []Info{
		{Command: "a", Description: "updated"},
		{Command: "b", Description: "2"},
		{Command: "c", Description: "3"},
	}
	if diff := cmp.Diff(want, r.Commands()); diff != "" {
		t.Errorf("Commands() mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveThenAddAppends(t *testing.T) {
	r := NewRegistry()
	r.Add("A", "first")
	r.Add("B", "second")

	if !r.Remove("A") {
		t.Fatal("Remove(A) = false")
	}
	r.Add("A", "first")

	want := []Info{
		{Command: "B", Description: "second"},
		{Command: "A", Description: "first"},
	}
	if diff := cmp.Diff(want, r.Commands()); diff != "" {
		t.Errorf("Commands() mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveMissing(t *testing.T) {
	r := NewRegistry()
	r.Add("x", "")
	if r.Remove("y") {
		t.Error("Remove(y) = true for missing identifier")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestCommandsIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Add("x", "one")
	cmds := r.Commands()
	cmds[0].Description = "changed"

	got, ok := r.Get("x")
	if !ok || got.Description != "one" {
		t.Errorf("Get(x) = %+v, %v", got, ok)
	}
	if !r.Has("x") || r.Has("y") {
		t.Error("Has() mismatch")
	}
}
