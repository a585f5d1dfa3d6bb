package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// SSEPublisher fans events out to SSE subscribers. Each topic keeps the
// last published event so a late subscriber immediately learns the
// current state instead of waiting for the next transition.
type SSEPublisher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	subs   map[string]map[*sseSubscription]struct{} // topic -> subscriptions
	last   map[string]Event                         // topic -> most recent event
	seq    map[string]int                           // topic -> version counter
	closed bool
}

// NewSSEPublisher creates a publisher. A nil logger discards everything.
func NewSSEPublisher(logger *slog.Logger) *SSEPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SSEPublisher{
		logger: logger,
		subs:   make(map[string]map[*sseSubscription]struct{}),
		last:   make(map[string]Event),
		seq:    make(map[string]int),
	}
}

// Subscribe attaches to a topic, replaying the topic's most recent event.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("publisher is closed")
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, 16), // buffered so publishers never block
		publisher: p,
	}
	if p.subs[topic] == nil {
		p.subs[topic] = make(map[*sseSubscription]struct{})
	}
	p.subs[topic][sub] = struct{}{}

	replay, hasReplay := p.last[topic]
	p.mu.Unlock()

	if hasReplay {
		sub.events <- replay
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to every subscriber of topic. Slow subscribers
// with full channels drop the event rather than block the publisher.
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.seq[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    payload,
		Version: p.seq[topic],
	}
	p.last[topic] = event

	for sub := range p.subs[topic] {
		select {
		case sub.events <- event:
		default:
			p.logger.Warn("subscriber channel full, dropping event", "topic", topic)
		}
	}
	return nil
}

// Close shuts down the publisher and every subscription.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	for _, subs := range p.subs {
		for sub := range subs {
			close(sub.events)
		}
	}
	p.subs = make(map[string]map[*sseSubscription]struct{})
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if subs := p.subs[sub.topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(p.subs, sub.topic)
		}
	}
}

type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	mu        sync.Mutex
	closed    bool
}

func (s *sseSubscription) Topic() string { return s.topic }

func (s *sseSubscription) Events() <-chan Event { return s.events }

func (s *sseSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.publisher.unsubscribe(s)
	return nil
}

// WriteSSE writes an event to an SSE response writer.
// Format: "data: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
