// Package book owns the order set of the single simulated account.
package book

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// DefaultCapacity bounds the retained order history.
const DefaultCapacity = 50

// Book stores orders newest-first and trims the oldest entries once the
// capacity is exceeded. Orders are never deleted explicitly; eviction by the
// trim policy is the only removal besides Clear.
type Book struct {
	mu       sync.RWMutex
	orders   []*domain.Order
	capacity int
}

// New creates an order book with the given capacity (DefaultCapacity if <= 0).
func New(capacity int) *Book {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Book{capacity: capacity}
}

// Submit creates a Pending order at entryPrice. It fails with
// domain.ErrInvalidSize when size is zero or negative. Submission has no
// ledger side effect: orders reserve no margin.
func (b *Book) Submit(side domain.Side, size, entryPrice decimal.Decimal) (domain.Order, error) {
	if size.Sign() <= 0 {
		return domain.Order{}, domain.ErrInvalidSize
	}

	o := &domain.Order{
		ID:         uuid.NewString(),
		Side:       side,
		Size:       size,
		EntryPrice: entryPrice,
		Status:     domain.OrderStatusPending,
		PlacedAt:   time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append([]*domain.Order{o}, b.orders...)
	if len(b.orders) > b.capacity {
		b.orders = b.orders[:b.capacity]
	}
	return *o, nil
}

// Settle runs one settlement sweep at fillPrice. For every Pending order the
// decide callback selects, the order transitions Pending -> Filled exactly
// once: FilledAt and PnL are recorded and a copy of the settled order is
// returned. Filled orders are never re-evaluated.
func (b *Book) Settle(fillPrice decimal.Decimal, now time.Time, decide func(domain.Order) bool) []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	var fills []domain.Order
	for _, o := range b.orders {
		if !o.IsPending() {
			continue
		}
		if !decide(*o) {
			continue
		}
		pnl := domain.PnL(o.Side, o.EntryPrice, fillPrice, o.Size)
		filledAt := now
		o.Status = domain.OrderStatusFilled
		o.FilledAt = &filledAt
		o.PnL = &pnl
		fills = append(fills, *o)
	}
	return fills
}

// List returns copies of all orders, newest first.
func (b *Book) List() []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Order, len(b.orders))
	for i, o := range b.orders {
		out[i] = *o
	}
	return out
}

// PendingCount returns the number of orders awaiting settlement.
func (b *Book) PendingCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, o := range b.orders {
		if o.IsPending() {
			n++
		}
	}
	return n
}

// Len returns the number of retained orders.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

// Clear drops all orders. Used by the coordinated account reset.
func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = nil
}
