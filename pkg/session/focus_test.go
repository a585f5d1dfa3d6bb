package session

import (
	"reflect"
	"testing"
)

func TestFocusSetReplace(t *testing.T) {
	f := NewFocusSet()

	if n := f.Set("dac1", "amp1"); n != 2 {
		t.Errorf("Expected size 2, got %d", n)
	}
	// A second call replaces, never merges.
	if n := f.Set("usb"); n != 1 {
		t.Errorf("Expected size 1 after replace, got %d", n)
	}
	if got := f.IDs(); !reflect.DeepEqual(got, []string{"usb"}) {
		t.Errorf("Expected [usb], got %v", got)
	}
}

func TestFocusSetClear(t *testing.T) {
	f := NewFocusSet()
	f.Set("dac1")

	if n := f.Set(); n != 0 {
		t.Errorf("Expected empty focus, got %d", n)
	}
	if f.Size() != 0 {
		t.Errorf("Expected size 0, got %d", f.Size())
	}
}

func TestFocusSetFilter(t *testing.T) {
	f := NewFocusSet()

	ids := []string{"dac1", "usb", "amp1"}

	// Empty focus is unrestricted.
	if got := f.Filter(ids); !reflect.DeepEqual(got, ids) {
		t.Errorf("Empty focus should pass everything, got %v", got)
	}

	f.Set("amp1", "dac1", "ghost")
	got := f.Filter(ids)
	// Relative order of the input is preserved.
	if !reflect.DeepEqual(got, []string{"dac1", "amp1"}) {
		t.Errorf("Expected [dac1 amp1], got %v", got)
	}
}

func TestFocusSetDuplicates(t *testing.T) {
	f := NewFocusSet()
	if n := f.Set("dac1", "dac1"); n != 1 {
		t.Errorf("Expected duplicates collapsed to 1, got %d", n)
	}
}
