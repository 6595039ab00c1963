// Package feed keeps the bounded, time-ordered log of notable occurrences
// (price ticks, orders, fills, system events) for display and audit.
package feed

import (
	"sync"
	"time"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// DefaultCapacity bounds the retained event history.
const DefaultCapacity = 50

// Log is an append-only event feed with ring semantics: new events are
// prepended and the oldest are dropped once capacity is exceeded.
type Log struct {
	mu       sync.RWMutex
	events   []domain.FeedEvent
	capacity int
}

// NewLog creates a feed with the given capacity (DefaultCapacity if <= 0).
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Publish prepends an event stamped with the current time.
func (l *Log) Publish(kind domain.EventKind, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev := domain.FeedEvent{Kind: kind, Text: text, Timestamp: time.Now()}
	l.events = append([]domain.FeedEvent{ev}, l.events...)
	if len(l.events) > l.capacity {
		l.events = l.events[:l.capacity]
	}
}

// Snapshot returns a newest-first copy of the retained events.
func (l *Log) Snapshot() []domain.FeedEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.FeedEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
