// Package pricefeed produces the synthetic price series that drives the
// simulation. It has no external input: the warm-up history is a damped
// sinusoid with jitter, and live ticks are a bounded random walk.
package pricefeed

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

const (
	// DefaultSeedCount is the number of warm-up ticks generated at startup.
	DefaultSeedCount = 80

	warmupSpacing = time.Second
)

// Source supplies the noise for the price walk. The default is an
// entropy-seeded PCG; tests inject fixed sequences to pin outcomes.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Config holds the tunables of the price process.
type Config struct {
	StartPrice  float64 // warm-up base price
	MaxDelta    float64 // per-tick perturbation bound (absolute)
	Precision   int32   // decimal places prices are rounded to
	MinPrice    float64 // strictly positive floor the walk is clamped to
	HistorySize int     // rolling window capacity
}

// Generator owns the current price and its rolling history.
// Mutation happens only via Initialize and Tick, which the simulator loop
// serializes; the mutex exists for external snapshot reads.
type Generator struct {
	mu      sync.RWMutex
	src     Source
	cfg     Config
	history []domain.PriceTick
	current decimal.Decimal
	min     decimal.Decimal
}

// NewGenerator creates a price generator. A nil src falls back to an
// entropy-seeded source, so restarts never reproduce the same series.
func NewGenerator(cfg Config, src Source) *Generator {
	if src == nil {
		src = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 200
	}
	if cfg.Precision <= 0 {
		cfg.Precision = 5
	}
	g := &Generator{
		src:     src,
		cfg:     cfg,
		history: make([]domain.PriceTick, 0, cfg.HistorySize),
		min:     decimal.NewFromFloat(cfg.MinPrice),
	}
	if g.min.Sign() <= 0 {
		g.min = decimal.New(1, -cfg.Precision) // smallest representable positive price
	}
	g.current = g.clamp(decimal.NewFromFloat(cfg.StartPrice).Round(cfg.Precision))
	return g
}

// Initialize generates the warm-up history: a damped sinusoid around the
// start price plus small jitter. The current price becomes the last
// generated value. Timestamps are back-dated so the series stays strictly
// increasing once live ticks begin.
func (g *Generator) Initialize(seedCount int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seedCount <= 0 {
		seedCount = DefaultSeedCount
	}

	base := g.cfg.StartPrice
	amplitude := g.cfg.MaxDelta * 5
	now := time.Now()

	g.history = g.history[:0]
	for i := 0; i < seedCount; i++ {
		decay := math.Exp(-float64(i) / 40.0)
		wave := amplitude * decay * math.Sin(float64(i)/6.0)
		jitter := (g.src.Float64() - 0.5) * g.cfg.MaxDelta
		price := g.clamp(decimal.NewFromFloat(base + wave + jitter).Round(g.cfg.Precision))

		g.history = append(g.history, domain.PriceTick{
			Timestamp: now.Add(-time.Duration(seedCount-i) * warmupSpacing),
			Price:     price,
		})
	}
	g.current = g.history[len(g.history)-1].Price
}

// Tick advances the price by a uniform delta in [-MaxDelta, +MaxDelta],
// appends the result to the rolling window and returns it. The oldest entry
// is evicted once the window is full.
func (g *Generator) Tick(now time.Time) domain.PriceTick {
	g.mu.Lock()
	defer g.mu.Unlock()

	delta := (g.src.Float64()*2 - 1) * g.cfg.MaxDelta
	next := g.clamp(g.current.Add(decimal.NewFromFloat(delta)).Round(g.cfg.Precision))

	// Keep timestamps strictly increasing even if the scheduler fires twice
	// within clock resolution.
	if n := len(g.history); n > 0 && !now.After(g.history[n-1].Timestamp) {
		now = g.history[n-1].Timestamp.Add(time.Millisecond)
	}

	tick := domain.PriceTick{Timestamp: now, Price: next}
	if len(g.history) >= g.cfg.HistorySize {
		copy(g.history, g.history[1:])
		g.history = g.history[:len(g.history)-1]
	}
	g.history = append(g.history, tick)
	g.current = next
	return tick
}

// Current returns the latest price.
func (g *Generator) Current() decimal.Decimal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// History returns a chronological (oldest-first) copy of the rolling window.
func (g *Generator) History() []domain.PriceTick {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.PriceTick, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Generator) clamp(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(g.min) {
		return g.min
	}
	return p
}
