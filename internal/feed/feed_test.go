package feed

import (
	"fmt"
	"testing"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

func TestLog_PublishNewestFirst(t *testing.T) {
	l := NewLog(50)

	l.Publish(domain.EventSystem, "first")
	l.Publish(domain.EventOrder, "second")

	events := l.Snapshot()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Text != "second" || events[1].Text != "first" {
		t.Error("Snapshot must be newest first")
	}
	if events[0].Kind != domain.EventOrder {
		t.Errorf("Expected ORDER kind, got %s", events[0].Kind)
	}
}

func TestLog_CapacityDropsOldest(t *testing.T) {
	l := NewLog(50)

	for i := 0; i < 75; i++ {
		l.Publish(domain.EventPrice, fmt.Sprintf("tick %d", i))
	}

	events := l.Snapshot()
	if len(events) != 50 {
		t.Fatalf("Expected feed capped at 50, got %d", len(events))
	}
	if events[0].Text != "tick 74" {
		t.Errorf("Expected newest event first, got %q", events[0].Text)
	}
	if events[len(events)-1].Text != "tick 25" {
		t.Errorf("Expected oldest retained event to be tick 25, got %q", events[len(events)-1].Text)
	}
}

func TestLog_SnapshotIsolation(t *testing.T) {
	l := NewLog(10)
	l.Publish(domain.EventSystem, "original")

	snap := l.Snapshot()
	snap[0].Text = "tampered"

	if l.Snapshot()[0].Text != "original" {
		t.Error("Mutating a snapshot must not affect feed state")
	}
}
