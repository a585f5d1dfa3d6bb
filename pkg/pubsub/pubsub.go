// Package pubsub distributes cache lifecycle events (sync progress,
// rebuilds) to web clients over server-sent events.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topic names used by the hot graph service.
const (
	TopicSyncStatus = "sync_status"
	TopicCacheStats = "cache_stats"
)

// Event is one published message.
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"` // e.g. "flushing", "rebuilding", "idle", "failed"
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // per-topic ordering
}

// SyncStatus is the payload published on every sync state transition.
type SyncStatus struct {
	State    string `json:"state"`
	Revision uint64 `json:"revision"`
}

// Subscription is a client's view of one topic.
type Subscription interface {
	// Topic returns the subscription topic.
	Topic() string

	// Events returns the channel events arrive on.
	Events() <-chan Event

	// Close detaches the subscription.
	Close() error
}

// Publisher manages subscriptions and event fan-out.
type Publisher interface {
	// Subscribe attaches to a topic. Context cancellation closes the
	// subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic.
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions.
	Close() error
}
