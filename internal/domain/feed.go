package domain

import "time"

// EventKind classifies feed events for display and audit.
type EventKind string

const (
	EventPrice  EventKind = "PRICE"
	EventOrder  EventKind = "ORDER"
	EventTrade  EventKind = "TRADE"
	EventSystem EventKind = "SYSTEM"
	EventError  EventKind = "ERROR"
)

// FeedEvent is a human-readable record of a state change.
// Events are append-only; the feed keeps only the most recent entries.
type FeedEvent struct {
	Kind      EventKind `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
