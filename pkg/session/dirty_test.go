package session

import (
	"reflect"
	"testing"
)

func TestDirtyTrackerMark(t *testing.T) {
	d := NewDirtyTracker()
	d.Mark("dac1")

	if !d.Has("dac1") {
		t.Error("Expected dac1 to be dirty")
	}
	if d.Has("amp1") {
		t.Error("amp1 should not be dirty")
	}
	if d.Count() != 1 {
		t.Errorf("Expected count 1, got %d", d.Count())
	}
}

func TestDirtyTrackerIdempotent(t *testing.T) {
	d := NewDirtyTracker()
	d.Mark("dac1")
	d.Mark("dac1")

	if d.Count() != 1 {
		t.Errorf("Marking twice should not grow the set, got %d", d.Count())
	}
}

func TestDirtyTrackerSnapshotAndClear(t *testing.T) {
	d := NewDirtyTracker()
	d.Mark("teensy", "dac1")

	snap := d.Snapshot()
	if !reflect.DeepEqual(snap, []string{"dac1", "teensy"}) {
		t.Errorf("Expected sorted snapshot, got %v", snap)
	}

	// A mark arriving after the snapshot survives the clear.
	d.Mark("amp1")
	d.Clear(snap)

	if d.Count() != 1 || !d.Has("amp1") {
		t.Errorf("Late mark lost: count=%d", d.Count())
	}
}
