package pricefeed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// stubSource replays a fixed cycle of values, pinning the price walk.
type stubSource struct {
	vals []float64
	i    int
}

func (s *stubSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func testConfig() Config {
	return Config{
		StartPrice:  1.1,
		MaxDelta:    0.004,
		Precision:   5,
		MinPrice:    0.01,
		HistorySize: 200,
	}
}

func TestGenerator_Initialize(t *testing.T) {
	g := NewGenerator(testConfig(), &stubSource{vals: []float64{0.3, 0.7}})
	g.Initialize(80)

	history := g.History()
	if len(history) != 80 {
		t.Fatalf("Expected 80 warm-up ticks, got %d", len(history))
	}

	for i, tick := range history {
		if tick.Price.Sign() <= 0 {
			t.Fatalf("Tick %d has non-positive price %s", i, tick.Price)
		}
		if i > 0 && !tick.Timestamp.After(history[i-1].Timestamp) {
			t.Fatalf("Timestamps not strictly increasing at index %d", i)
		}
	}

	if !g.Current().Equal(history[len(history)-1].Price) {
		t.Errorf("Current price %s should equal last warm-up price %s",
			g.Current(), history[len(history)-1].Price)
	}
}

func TestGenerator_TickBoundedDelta(t *testing.T) {
	g := NewGenerator(testConfig(), nil) // entropy-seeded, bound must hold anyway
	g.Initialize(10)

	// Rounding to 5 places can push the step past the raw bound by half an ulp.
	bound := decimal.NewFromFloat(0.004).Add(decimal.New(1, -5))

	prev := g.Current()
	now := time.Now()
	for i := 0; i < 500; i++ {
		now = now.Add(time.Second)
		tick := g.Tick(now)

		diff := tick.Price.Sub(prev).Abs()
		if diff.GreaterThan(bound) {
			t.Fatalf("Tick %d moved %s, beyond bound %s", i, diff, bound)
		}
		if tick.Price.Sign() <= 0 {
			t.Fatalf("Tick %d produced non-positive price %s", i, tick.Price)
		}
		prev = tick.Price
	}
}

func TestGenerator_ClampsToMinPrice(t *testing.T) {
	cfg := testConfig()
	cfg.StartPrice = 0.012
	// Source always returns 0 -> delta is always -MaxDelta.
	g := NewGenerator(cfg, &stubSource{vals: []float64{0}})

	now := time.Now()
	var last decimal.Decimal
	for i := 0; i < 10; i++ {
		now = now.Add(time.Second)
		last = g.Tick(now).Price
	}

	min := decimal.NewFromFloat(cfg.MinPrice)
	if !last.Equal(min) {
		t.Errorf("Expected walk clamped at %s, got %s", min, last)
	}
}

func TestGenerator_HistoryCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.HistorySize = 5
	g := NewGenerator(cfg, &stubSource{vals: []float64{0.6}})
	g.Initialize(3)

	now := time.Now()
	var lastTick decimal.Decimal
	for i := 0; i < 20; i++ {
		now = now.Add(time.Second)
		lastTick = g.Tick(now).Price
	}

	history := g.History()
	if len(history) != 5 {
		t.Fatalf("Expected history capped at 5, got %d", len(history))
	}
	// Oldest dropped first: the newest tick must be the last entry.
	if !history[len(history)-1].Price.Equal(lastTick) {
		t.Errorf("Expected newest tick %s at the end, got %s",
			lastTick, history[len(history)-1].Price)
	}
	for i := 1; i < len(history); i++ {
		if !history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Fatalf("Timestamps not strictly increasing after trim at index %d", i)
		}
	}
}

func TestGenerator_MonotonicTimestamps(t *testing.T) {
	g := NewGenerator(testConfig(), &stubSource{vals: []float64{0.5}})

	// Fire twice with the same wall-clock instant.
	now := time.Now()
	first := g.Tick(now)
	second := g.Tick(now)

	if !second.Timestamp.After(first.Timestamp) {
		t.Error("Second tick must get a later timestamp even at same wall clock")
	}
}

func TestGenerator_HistorySnapshotIsolation(t *testing.T) {
	g := NewGenerator(testConfig(), &stubSource{vals: []float64{0.5}})
	g.Initialize(5)

	snap := g.History()
	snap[0].Price = decimal.NewFromInt(-999)

	if g.History()[0].Price.Sign() <= 0 {
		t.Error("Mutating a snapshot must not affect generator state")
	}
}
