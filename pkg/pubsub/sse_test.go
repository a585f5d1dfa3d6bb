package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestPublishFanOut(t *testing.T) {
	pub := NewSSEPublisher(nil)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicSyncStatus)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	if err := pub.Publish(TopicSyncStatus, "flushing", SyncStatus{State: "flushing", Revision: 3}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Type != "flushing" {
			t.Errorf("Expected type flushing, got %q", event.Type)
		}
		var status SyncStatus
		if err := json.Unmarshal(event.Data, &status); err != nil {
			t.Fatalf("Unmarshal payload error = %v", err)
		}
		if status.Revision != 3 {
			t.Errorf("Expected revision 3, got %d", status.Revision)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestSubscribeReplaysLastEvent(t *testing.T) {
	pub := NewSSEPublisher(nil)
	defer pub.Close()

	for i := 1; i <= 3; i++ {
		if err := pub.Publish(TopicSyncStatus, "idle", SyncStatus{Revision: uint64(i)}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicSyncStatus)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		// Only the most recent event is replayed.
		if event.Version != 3 {
			t.Errorf("Expected version 3 replayed, got %d", event.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for replayed event")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Unexpected extra replay: version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestVersionOrdering(t *testing.T) {
	pub := NewSSEPublisher(nil)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicCacheStats)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	for i := 0; i < 3; i++ {
		if err := pub.Publish(TopicCacheStats, "stats", map[string]int{"n": i}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	for want := 1; want <= 3; want++ {
		select {
		case event := <-sub.Events():
			if event.Version != want {
				t.Errorf("Expected version %d, got %d", want, event.Version)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for event %d", want)
		}
	}
}

func TestPublishAfterClose(t *testing.T) {
	pub := NewSSEPublisher(nil)
	pub.Close()

	if err := pub.Publish(TopicSyncStatus, "idle", nil); err == nil {
		t.Error("Expected error publishing to closed publisher")
	}
	if _, err := pub.Subscribe(context.Background(), TopicSyncStatus); err == nil {
		t.Error("Expected error subscribing to closed publisher")
	}
}
