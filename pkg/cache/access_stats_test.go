package cache

import (
	"reflect"
	"sync"
	"testing"
)

func TestAccessStatsRecord(t *testing.T) {
	s := NewAccessStats()
	s.Record("dac1", "amp1", "dac1")

	if got := s.Count("dac1"); got != 2 {
		t.Errorf("Expected count 2 for dac1, got %d", got)
	}
	if got := s.Count("amp1"); got != 1 {
		t.Errorf("Expected count 1 for amp1, got %d", got)
	}
	if got := s.Total(); got != 3 {
		t.Errorf("Expected total 3, got %d", got)
	}
}

func TestAccessStatsTopN(t *testing.T) {
	s := NewAccessStats()
	s.Record("usb", "usb", "usb")
	s.Record("dac1", "dac1")
	s.Record("amp1", "amp1") // ties with dac1, amp1 sorts first
	s.Record("teensy")

	got := s.TopN(3)
	want := []Access{
		{ID: "usb", Count: 3},
		{ID: "amp1", Count: 2},
		{ID: "dac1", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopN(3) = %v, want %v", got, want)
	}
}

func TestAccessStatsTopNLargerThanSet(t *testing.T) {
	s := NewAccessStats()
	s.Record("usb")

	if got := s.TopN(10); len(got) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(got))
	}
}

func TestAccessStatsConcurrent(t *testing.T) {
	s := NewAccessStats()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Record("dac1")
			}
		}()
	}
	wg.Wait()

	if got := s.Count("dac1"); got != 800 {
		t.Errorf("Expected 800, got %d", got)
	}
}
